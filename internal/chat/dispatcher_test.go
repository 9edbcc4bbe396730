package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
	"github.com/Veraticus/thrift/internal/storage"
)

var testNow = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store      *storage.SQLiteStorage
	dispatcher *Dispatcher
	client     *llm.MockClient
	user       *model.User
}

func newFixture(t *testing.T, replies ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	user := &model.User{ID: "u1", Name: "Ana", BaselineIncome: 5000}
	require.NoError(t, store.SaveUser(ctx, user))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := llm.NewMockClient(replies...)
	clock := func() time.Time { return testNow }
	synth := goals.NewSynthesizer(client, nil, "", logger).WithClock(clock)

	ids := 0
	d := NewDispatcher(store, synth, client, logger).WithClock(clock)
	d.newID = func() string {
		ids++
		return "goal-" + string(rune('0'+ids))
	}

	return &fixture{store: store, dispatcher: d, client: client, user: user}
}

func (f *fixture) seed(t *testing.T, g model.SavingsGoal) {
	t.Helper()
	g.UserID = f.user.ID
	require.NoError(t, f.store.SaveGoal(context.Background(), &g))
}

func (f *fixture) say(t *testing.T, text string) Reply {
	t.Helper()
	reply, err := f.dispatcher.Handle(context.Background(), f.user, []llm.Message{{Role: llm.RoleUser, Content: text}})
	require.NoError(t, err)
	return reply
}

func thailand() model.SavingsGoal {
	return model.SavingsGoal{
		ID:           "g-thai",
		Title:        "Thailand trip",
		TargetAmount: 1200,
		TargetDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		SavedAmount:  100,
		Rules:        []string{"Transfer 100.00 per month into this goal", "Cook at home"},
		CreatedAt:    testNow.Add(-time.Hour),
	}
}

func TestHandle_Deposit(t *testing.T) {
	f := newFixture(t)
	f.seed(t, thailand())

	reply := f.say(t, "I saved 200 at Thailand trip")

	assert.Equal(t, KindDeposit, reply.Intent.Kind())
	assert.Equal(t, "Added 200.00 to Thailand trip. Saved so far: 300.00 of 1200.00.", reply.Text)
	require.Len(t, reply.Goals, 1)
	assert.Equal(t, 300.0, reply.Goals[0].SavedAmount)

	stored, err := f.store.GetGoal(context.Background(), "g-thai")
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.SavedAmount)
	assert.Empty(t, f.client.Calls(), "deposits never call the assistant")
}

func TestHandle_CreateGoal(t *testing.T) {
	f := newFixture(t, `Sure! {"title":"Bike","targetAmount":600,"targetDate":"2025-09-15","rules":["Sell old gear","Save 50 every month"]}`)

	reply := f.say(t, "I want to save 600 for a bike by September")

	assert.Equal(t, KindCreate, reply.Intent.Kind())
	require.Len(t, reply.Goals, 1)
	g := reply.Goals[0]
	assert.Equal(t, "goal-1", g.ID)
	assert.Equal(t, "Bike", g.Title)
	assert.Equal(t, []string{"Transfer 100.00 per month into this goal", "Sell old gear"}, g.Rules)
	assert.Zero(t, g.SavedAmount)
	assert.Equal(t, "Created the goal Bike: save 600.00 by 2025-09-15. Transfer 100.00 per month into this goal.", reply.Text)
}

func TestHandle_CreateGoalFallsBackToDefault(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.synth = goals.NewSynthesizer(llm.NewFailingMockClient(errors.New("quota")), nil, "", nil).
		WithClock(func() time.Time { return testNow })

	reply := f.say(t, "I want to save for a house in 2 years")

	require.Len(t, reply.Goals, 1)
	assert.Equal(t, goals.DefaultTitle, reply.Goals[0].Title)
	assert.Equal(t, "2025-09-11", reply.Goals[0].TargetDate.Format(model.DateLayout))
}

func TestHandle_RuleChanges(t *testing.T) {
	f := newFixture(t)
	f.seed(t, thailand())

	reply := f.say(t, `add a rule to Thailand trip: "No taxis"`)
	assert.Equal(t, "Added a rule to Thailand trip: No taxis", reply.Text)
	assert.Equal(t, []string{"Transfer 100.00 per month into this goal", "Cook at home", "No taxis"}, reply.Goals[0].Rules)

	reply = f.say(t, "remove rule 1 from Thailand trip")
	assert.Equal(t, "The monthly contribution rule of Thailand trip can't be removed.", reply.Text)
	assert.Len(t, reply.Goals[0].Rules, 3)

	reply = f.say(t, "remove rule 2 from Thailand trip")
	assert.Equal(t, "Removed a rule from Thailand trip: Cook at home", reply.Text)
	assert.Equal(t, []string{"Transfer 100.00 per month into this goal", "No taxis"}, reply.Goals[0].Rules)

	reply = f.say(t, "remove rule 9 from Thailand trip")
	assert.Equal(t, "I couldn't find that rule in Thailand trip.", reply.Text)
}

func TestHandle_CompleteAndDelete(t *testing.T) {
	f := newFixture(t)
	f.seed(t, thailand())

	reply := f.say(t, "I finished the Thailand trip goal")
	assert.Equal(t, KindComplete, reply.Intent.Kind())

	stored, err := f.store.GetGoal(context.Background(), "g-thai")
	require.NoError(t, err)
	assert.Equal(t, stored.TargetAmount, stored.SavedAmount)

	reply = f.say(t, "delete the Thailand trip")
	assert.Equal(t, "Deleted the goal Thailand trip.", reply.Text)
	assert.Empty(t, reply.Goals)
}

func TestHandle_Update(t *testing.T) {
	f := newFixture(t)
	f.seed(t, thailand())

	reply := f.say(t, "change Thailand trip to 2400")
	assert.Equal(t, "Updated Thailand trip: 2400.00 by 2026-03-15. Transfer 200.00 per month into this goal.", reply.Text)
	assert.Equal(t, 2400.0, reply.Goals[0].TargetAmount)
	assert.Equal(t, "Cook at home", reply.Goals[0].Rules[1])
}

func TestHandle_UpdateAsksAssistantWhenVague(t *testing.T) {
	f := newFixture(t, `{"targetAmount": 1800, "targetDate": "2026-09-15"}`)
	f.seed(t, thailand())

	reply := f.say(t, "update the Thailand trip, I need more for the flights")

	require.Len(t, f.client.Calls(), 1)
	assert.Equal(t, 1800.0, reply.Goals[0].TargetAmount)
	assert.Equal(t, "2026-09-15", reply.Goals[0].TargetDate.Format(model.DateLayout))
	assert.Equal(t, "Transfer 100.00 per month into this goal", reply.Goals[0].Rules[0])
}

func TestHandle_UpdateWithNothingToChange(t *testing.T) {
	f := newFixture(t, "no idea")
	f.seed(t, thailand())

	reply := f.say(t, "edit my goal")
	assert.Equal(t, "Tell me what to change about Thailand trip: a new amount, date or title.", reply.Text)
}

func TestHandle_General(t *testing.T) {
	f := newFixture(t, "You are on track.")
	f.seed(t, thailand())

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "Hello!"},
		{Role: llm.RoleUser, Content: "How am I doing?"},
	}
	reply, err := f.dispatcher.Handle(context.Background(), f.user, history)
	require.NoError(t, err)

	assert.Equal(t, KindGeneral, reply.Intent.Kind())
	assert.Equal(t, "You are on track.", reply.Text)

	calls := f.client.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 4)
	system := calls[0].Messages[0]
	assert.Equal(t, llm.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "5000.00")
	assert.Contains(t, system.Content, "- Thailand trip: 100.00 of 1200.00 saved, target date 2026-03-15")
	assert.Equal(t, history, calls[0].Messages[1:])
}

func TestHandle_GeneralFallback(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.client = llm.NewFailingMockClient(common.ErrUnavailable)

	reply := f.say(t, "any tips?")
	assert.Equal(t, FallbackReply, reply.Text)
}

func TestHandle_NoUserMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.dispatcher.Handle(context.Background(), f.user, []llm.Message{{Role: llm.RoleAssistant, Content: "hello"}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

type failingStorage struct {
	service.Storage
	mock.Mock
}

func (m *failingStorage) ListGoals(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	args := m.Called(ctx, userID)
	return nil, args.Error(1)
}

func TestHandle_StorageErrorPropagates(t *testing.T) {
	store := &failingStorage{}
	store.On("ListGoals", mock.Anything, "u1").Return(nil, errors.New("disk I/O error"))

	d := NewDispatcher(store, goals.NewSynthesizer(llm.NewMockClient(), nil, "", nil), llm.NewMockClient(), nil)
	_, err := d.Handle(context.Background(), &model.User{ID: "u1"}, []llm.Message{{Role: llm.RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	store.AssertExpectations(t)
}

func TestSystemInstruction_NoGoals(t *testing.T) {
	text := SystemInstruction(&model.User{BaselineIncome: 3200.5}, nil)
	assert.Contains(t, text, "3200.50")
	assert.Contains(t, text, "no savings goals yet")
}
