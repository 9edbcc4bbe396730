package classifier

import (
	"fmt"
	"strings"

	"github.com/Veraticus/thrift/internal/examples"
	"github.com/Veraticus/thrift/internal/model"
)

const systemPrompt = `You are a personal finance assistant that classifies a single transaction.
You MUST respond with ONLY a valid JSON object with these fields:
  "category": a short lowercase category name,
  "isImpulse": true if the purchase looks unplanned or emotionally driven,
  "decisionLabel": "useful" or "unnecessary",
  "decisionExplanation": one or two sentences explaining the verdict.
Do not include any text before or after the JSON.`

// buildPrompt renders the user instruction for one transaction.
func buildPrompt(raw model.RawTransaction, shots []examples.Example, stats []examples.CategoryStats) string {
	var b strings.Builder

	b.WriteString("Allowed categories: ")
	b.WriteString(strings.Join(model.SuggestedCategories, ", "))
	b.WriteString(".\nIf none fits, you may coin a new concise category.\n\n")

	if len(shots) > 0 {
		b.WriteString("Examples:\n")
		for _, ex := range shots {
			fmt.Fprintf(&b, "- merchant=%q amount=%.2f -> {\"category\":%q,\"isImpulse\":%t,\"decisionLabel\":%q,\"decisionExplanation\":%q}\n",
				ex.Merchant, ex.Amount, ex.Category, ex.IsImpulse, ex.Decision, ex.Explanation)
		}
		b.WriteString("\n")
	}

	if len(stats) > 0 {
		b.WriteString("Typical amounts per category:\n")
		for _, s := range stats {
			fmt.Fprintf(&b, "- %s: average %.2f (range %.2f-%.2f)\n", s.Category, s.Mean, s.Min, s.Max)
		}
		b.WriteString("\n")
	}

	b.WriteString("Transaction:\n")
	fmt.Fprintf(&b, "Merchant: %s\n", raw.Merchant)
	fmt.Fprintf(&b, "Amount: %.2f\n", raw.Amount)
	if hint := strings.TrimSpace(raw.CategoryHint); hint != "" {
		fmt.Fprintf(&b, "User category hint: %s\n", hint)
	}
	if why := strings.TrimSpace(raw.Justification); why != "" {
		fmt.Fprintf(&b, "User justification: %s\n", why)
		b.WriteString("Take the justification into account when judging whether the purchase was impulsive or useful.\n")
	}

	return b.String()
}
