package classifier

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/thrift/internal/model"
)

// neverImpulse disables the impulse threshold for a rule.
const neverImpulse = -1

// keywordRule maps merchant keywords to a category and an impulse threshold.
type keywordRule struct {
	category     string
	decision     model.DecisionLabel
	keywords     []string
	impulseAbove float64
}

// fallbackRules is scanned in order; the longest keyword found in the merchant
// wins, and earlier rules win ties.
var fallbackRules = []keywordRule{
	{
		category: "groceries",
		keywords: []string{
			"supermarket", "grocery", "groceries", "whole foods", "trader joe", "kroger",
			"aldi", "lidl", "safeway", "costco", "mercadona", "carrefour", "market",
		},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
	{
		category: "shopping",
		keywords: []string{
			"zara", "h&m", "shein", "uniqlo", "nike", "adidas", "primark", "mango",
			"forever 21", "boutique", "fashion", "clothing",
		},
		impulseAbove: 50,
		decision:     model.DecisionUseful,
	},
	{
		category:     "shopping",
		keywords:     []string{"amazon", "ebay", "aliexpress", "etsy", "best buy"},
		impulseAbove: 100,
		decision:     model.DecisionUseful,
	},
	{
		category: "dining",
		keywords: []string{
			"restaurant", "cafe", "café", "coffee", "starbucks", "mcdonald", "burger",
			"pizza", "uber eats", "doordash", "grubhub", "rappi", "deliveroo", "chipotle",
		},
		impulseAbove: 30,
		decision:     model.DecisionUseful,
	},
	{
		category: "transport",
		keywords: []string{
			"uber", "lyft", "taxi", "cabify", "shell", "chevron", "exxon", "gas station",
			"fuel", "metro", "parking", "transit",
		},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
	{
		category: "entertainment",
		keywords: []string{
			"netflix", "spotify", "hulu", "disney+", "cinema", "theatre", "steam",
			"playstation", "xbox", "nintendo", "ticketmaster", "concert",
		},
		impulseAbove: 20,
		decision:     model.DecisionUseful,
	},
	{
		category: "utilities",
		keywords: []string{
			"electric", "water bill", "internet", "comcast", "verizon", "at&t",
			"t-mobile", "utility", "energy",
		},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
	{
		category: "health",
		keywords: []string{
			"pharmacy", "farmacia", "cvs", "walgreens", "hospital", "clinic", "doctor",
			"dental", "gym", "fitness",
		},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
	{
		category:     "housing",
		keywords:     []string{"rent", "mortgage", "landlord", "home depot", "ikea"},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
	{
		category:     "travel",
		keywords:     []string{"airline", "airbnb", "hotel", "booking.com", "expedia", "flight"},
		impulseAbove: 300,
		decision:     model.DecisionUseful,
	},
	{
		category:     model.CategorySalary,
		keywords:     []string{"payroll", "salary", "direct deposit", "nomina", "nómina"},
		impulseAbove: neverImpulse,
		decision:     model.DecisionUseful,
	},
}

// Fallback classifies a transaction from its merchant and amount alone.
// It is a pure function: the same inputs always produce the same verdict.
func Fallback(merchant string, amount float64) model.Verdict {
	name := strings.ToLower(strings.TrimSpace(merchant))

	var best *keywordRule
	bestLen := 0
	for i := range fallbackRules {
		r := &fallbackRules[i]
		for _, kw := range r.keywords {
			if len(kw) > bestLen && strings.Contains(name, kw) {
				best = r
				bestLen = len(kw)
			}
		}
	}

	if best == nil {
		return model.Verdict{
			Category:    model.CategoryGeneral,
			Decision:    model.DecisionUseful,
			Explanation: explain(merchant, false),
		}
	}

	impulse := best.impulseAbove != neverImpulse && math.Abs(amount) > best.impulseAbove
	decision := best.decision
	if impulse {
		decision = model.DecisionUnnecessary
	}

	return model.Verdict{
		Category:    best.category,
		IsImpulse:   impulse,
		Decision:    decision,
		Explanation: explain(merchant, impulse),
	}
}

// explain produces the templated explanation used when no model text is available.
func explain(merchant string, impulse bool) string {
	name := strings.TrimSpace(merchant)
	if name == "" {
		name = "this merchant"
	}
	if impulse {
		return fmt.Sprintf("The purchase at %s looks like an impulse buy. Consider whether it was planned.", name)
	}
	return fmt.Sprintf("The purchase at %s looks like a regular, planned expense.", name)
}
