package main

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/model"
)

var helpExample = regexp.MustCompile(`thrift chat "([^"]+)"`)

func TestChatHelpExamplesRoute(t *testing.T) {
	existing := []model.SavingsGoal{
		{ID: "g-car", Title: "New car"},
		{ID: "g-thai", Title: "Thailand trip"},
	}

	var examples []string
	for _, m := range helpExample.FindAllStringSubmatch(chatCmd(&env{}).Long, -1) {
		examples = append(examples, m[1])
	}
	require.Len(t, examples, 3)

	assert.Equal(t, chat.CreateGoalIntent{Utterance: examples[0]}, chat.Route(examples[0], existing))
	assert.Equal(t, chat.DepositIntent{GoalID: "g-thai", Amount: 150}, chat.Route(examples[1], existing))
	assert.Equal(t, chat.RuleAddIntent{GoalID: "g-thai", Rule: "cook at home on weekdays"}, chat.Route(examples[2], existing))
}
