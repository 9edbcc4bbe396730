// Package examples exposes the labeled seed transactions used as few-shot
// exemplars for classification and as baseline spending statistics.
package examples

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed seed.yaml
var seedData []byte

// Example is one labeled reference transaction.
type Example struct {
	Merchant    string  `yaml:"merchant"`
	Category    string  `yaml:"category"`
	Decision    string  `yaml:"decision"`
	Explanation string  `yaml:"explanation"`
	Amount      float64 `yaml:"amount"`
	IsImpulse   bool    `yaml:"is_impulse"`
}

// CategoryStats summarizes seed amounts for one category.
type CategoryStats struct {
	Category string
	Count    int
	Mean     float64
	Min      float64
	Max      float64
}

// priority is the order categories are drawn from when building few-shot sets.
var priority = []string{
	"groceries",
	"dining",
	"shopping",
	"transport",
	"entertainment",
	"utilities",
	"health",
	"housing",
	"education",
	"travel",
	"salary",
	"other income",
	"general",
}

// Provider serves read-only access to a set of examples.
type Provider struct {
	hints    *hintModel
	intn     func(n int) int
	examples []Example
}

var (
	defaultOnce     sync.Once
	defaultProvider *Provider
)

// Default returns the process-wide provider over the embedded seed corpus.
func Default() *Provider {
	defaultOnce.Do(func() {
		p, err := Parse(seedData)
		if err != nil {
			slog.Error("failed to load seed examples", "error", err)
			p = NewProvider(nil)
		}
		defaultProvider = p
	})
	return defaultProvider
}

// Parse builds a provider from YAML data.
func Parse(data []byte) (*Provider, error) {
	var list []Example
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse seed examples: %w", err)
	}
	for i := range list {
		list[i].Category = strings.ToLower(strings.TrimSpace(list[i].Category))
	}
	return NewProvider(list), nil
}

// NewProvider builds a provider over an explicit example list.
func NewProvider(list []Example) *Provider {
	return &Provider{
		examples: list,
		intn:     rand.IntN,
		hints:    trainHints(list),
	}
}

// WithRand returns a copy of p drawing random indexes from intn.
func (p *Provider) WithRand(intn func(n int) int) *Provider {
	cp := *p
	cp.intn = intn
	return &cp
}

// FewShot returns up to n examples: first one per category in priority order,
// then random examples not already chosen.
func (p *Provider) FewShot(n int) []Example {
	if n <= 0 || len(p.examples) == 0 {
		return nil
	}

	chosen := make(map[int]bool, n)
	out := make([]Example, 0, n)

	for _, category := range p.categoryOrder() {
		if len(out) == n {
			break
		}
		for i, ex := range p.examples {
			if ex.Category == category {
				chosen[i] = true
				out = append(out, ex)
				break
			}
		}
	}

	remaining := len(p.examples) - len(chosen)
	for len(out) < n && remaining > 0 {
		i := p.intn(len(p.examples))
		if chosen[i] {
			continue
		}
		chosen[i] = true
		remaining--
		out = append(out, p.examples[i])
	}

	return out
}

// categoryOrder lists the priority categories present, then any others in
// first-seen order.
func (p *Provider) categoryOrder() []string {
	present := make(map[string]bool)
	var extra []string
	for _, ex := range p.examples {
		if !present[ex.Category] {
			present[ex.Category] = true
			extra = append(extra, ex.Category)
		}
	}

	order := make([]string, 0, len(present))
	listed := make(map[string]bool, len(priority))
	for _, c := range priority {
		listed[c] = true
		if present[c] {
			order = append(order, c)
		}
	}
	for _, c := range extra {
		if !listed[c] {
			order = append(order, c)
		}
	}
	return order
}

// TypicalAmounts returns per-category amount statistics sorted by category.
func (p *Provider) TypicalAmounts() []CategoryStats {
	byCategory := make(map[string]*CategoryStats)
	for _, ex := range p.examples {
		s, ok := byCategory[ex.Category]
		if !ok {
			s = &CategoryStats{Category: ex.Category, Min: ex.Amount, Max: ex.Amount}
			byCategory[ex.Category] = s
		}
		s.Count++
		s.Mean += ex.Amount
		s.Min = min(s.Min, ex.Amount)
		s.Max = max(s.Max, ex.Amount)
	}

	out := make([]CategoryStats, 0, len(byCategory))
	for _, s := range byCategory {
		s.Mean /= float64(s.Count)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
