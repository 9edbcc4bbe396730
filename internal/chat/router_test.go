package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/model"
)

func testGoals() []model.SavingsGoal {
	return []model.SavingsGoal{
		{
			ID:           "g-car",
			Title:        "New car",
			TargetAmount: 8000,
			TargetDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Rules:        []string{"Transfer 500.00 per month into this goal"},
		},
		{
			ID:           "g-thai",
			Title:        "Thailand trip",
			TargetAmount: 1200,
			TargetDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Rules:        []string{"Transfer 100.00 per month into this goal", "Cook at home"},
		},
		{
			ID:           "g-compu",
			Title:        "Computadora nueva",
			TargetAmount: 900,
			TargetDate:   time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			Rules:        []string{"Transfer 90.00 per month into this goal"},
		},
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		want      Intent
		name      string
		utterance string
		goals     []model.SavingsGoal
	}{
		{
			name:      "deposit by title",
			utterance: "I saved 200 at Thailand trip",
			goals:     testGoals(),
			want:      DepositIntent{GoalID: "g-thai", Amount: 200},
		},
		{
			name:      "deposit with thousands separator",
			utterance: "Deposited $1,250.50 into my new car fund",
			goals:     testGoals(),
			want:      DepositIntent{GoalID: "g-car", Amount: 1250.50},
		},
		{
			name:      "accent-insensitive deposit",
			utterance: "Ahorré 50 para la computadora nueva",
			goals:     testGoals(),
			want:      DepositIntent{GoalID: "g-compu", Amount: 50},
		},
		{
			name:      "deposit wins over create",
			utterance: "I saved 300 for my Thailand trip goal this month",
			goals:     testGoals(),
			want:      DepositIntent{GoalID: "g-thai", Amount: 300},
		},
		{
			name:      "deposit needs a named goal",
			utterance: "I saved 200 today",
			goals:     testGoals(),
			want:      GeneralIntent{},
		},
		{
			name:      "add quoted rule",
			utterance: `Add a rule to Thailand trip: "No coffee shops on weekdays"`,
			goals:     testGoals(),
			want:      RuleAddIntent{GoalID: "g-thai", Rule: "No coffee shops on weekdays"},
		},
		{
			name:      "add colon rule defaults to first goal",
			utterance: "new rule: walk to work",
			goals:     testGoals(),
			want:      RuleAddIntent{GoalID: "g-car", Rule: "walk to work"},
		},
		{
			name:      "remove rule by index",
			utterance: "remove rule 2 from Thailand trip",
			goals:     testGoals(),
			want:      RuleRemoveIntent{GoalID: "g-thai", Position: 2},
		},
		{
			name:      "remove rule by text",
			utterance: "elimina la regla \"cook at home\" de Thailand trip",
			goals:     testGoals(),
			want:      RuleRemoveIntent{GoalID: "g-thai", Text: "cook at home"},
		},
		{
			name:      "delete goal",
			utterance: "please delete the Thailand trip",
			goals:     testGoals(),
			want:      DeleteIntent{GoalID: "g-thai"},
		},
		{
			name:      "delete defaults to first goal",
			utterance: "cancel my goal",
			goals:     testGoals(),
			want:      DeleteIntent{GoalID: "g-car"},
		},
		{
			name:      "complete goal",
			utterance: "I reached my Thailand trip goal!",
			goals:     testGoals(),
			want:      CompleteIntent{GoalID: "g-thai"},
		},
		{
			name:      "update amount",
			utterance: "change Thailand trip to 2,000",
			goals:     testGoals(),
			want:      UpdateIntent{GoalID: "g-thai", Utterance: "change Thailand trip to 2,000", Changes: changes(nil, ptr(2000.0), nil)},
		},
		{
			name:      "update date by duration",
			utterance: "extend the new car goal by 3 months",
			goals:     testGoals(),
			want: UpdateIntent{GoalID: "g-car", Utterance: "extend the new car goal by 3 months",
				Changes: changes(nil, nil, ptr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))},
		},
		{
			name:      "update iso date",
			utterance: "move Thailand trip to 2026-05-01",
			goals:     testGoals(),
			want: UpdateIntent{GoalID: "g-thai", Utterance: "move Thailand trip to 2026-05-01",
				Changes: changes(nil, nil, ptr(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))},
		},
		{
			name:      "rename",
			utterance: `rename Thailand trip to "Japan trip"`,
			goals:     testGoals(),
			want:      UpdateIntent{GoalID: "g-thai", Utterance: `rename Thailand trip to "Japan trip"`, Changes: changes(ptr("Japan trip"), nil, nil)},
		},
		{
			name:      "create with amount",
			utterance: "I want to save 1200 for a trip to Thailand",
			goals:     nil,
			want:      CreateGoalIntent{Utterance: "I want to save 1200 for a trip to Thailand"},
		},
		{
			name:      "create with duration",
			utterance: "Quiero ahorrar para una bici en seis meses",
			goals:     testGoals(),
			want:      CreateGoalIntent{Utterance: "Quiero ahorrar para una bici en seis meses"},
		},
		{
			name:      "goal keyword alone is general",
			utterance: "what is a good goal?",
			goals:     nil,
			want:      GeneralIntent{},
		},
		{
			name:      "delete defaults to the only goal",
			utterance: "delete it",
			goals:     testGoals()[1:2],
			want:      DeleteIntent{GoalID: "g-thai"},
		},
		{
			name:      "complete defaults to the only goal",
			utterance: "I finished it!",
			goals:     testGoals()[1:2],
			want:      CompleteIntent{GoalID: "g-thai"},
		},
		{
			name:      "update defaults to the only goal",
			utterance: "change the deadline to 2027-01-01",
			goals:     testGoals()[1:2],
			want: UpdateIntent{GoalID: "g-thai", Utterance: "change the deadline to 2027-01-01",
				Changes: changes(nil, nil, ptr(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))},
		},
		{
			name:      "keywords inside other words do not count",
			utterance: "is my credit score ok?",
			goals:     testGoals(),
			want:      GeneralIntent{},
		},
		{
			name:      "goal-targeting intents need goals",
			utterance: "delete my goal",
			goals:     nil,
			want:      GeneralIntent{},
		},
		{
			name:      "general conversation",
			utterance: "How am I doing this month?",
			goals:     testGoals(),
			want:      GeneralIntent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.utterance, tt.goals)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoute_KindsAreDistinct(t *testing.T) {
	seen := map[Kind]bool{}
	for _, in := range []Intent{
		DepositIntent{}, RuleAddIntent{}, RuleRemoveIntent{}, DeleteIntent{},
		CompleteIntent{}, UpdateIntent{}, CreateGoalIntent{}, GeneralIntent{},
	} {
		require.False(t, seen[in.Kind()], in.Kind())
		seen[in.Kind()] = true
	}
}

func TestMatchGoal(t *testing.T) {
	g, ok := MatchGoal(Normalize("Para la COMPUTADORA   NUEVA"), testGoals())
	require.True(t, ok)
	assert.Equal(t, "g-compu", g.ID)

	_, ok = MatchGoal("nothing here", testGoals())
	assert.False(t, ok)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{text: "200", want: 200, ok: true},
		{text: "$1,200.50", want: 1200.50, ok: true},
		{text: "0 then 45", want: 45, ok: true},
		{text: "no numbers", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func changes(title *string, amount *float64, date *time.Time) goals.Changes {
	return goals.Changes{Title: title, Amount: amount, Date: date}
}
