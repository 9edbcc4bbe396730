package examples

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jbrukh/bayesian"
)

// Hint is a category suggestion with its log-likelihood score.
type Hint struct {
	Category string
	Score    float64
}

// hintModel is a TF-IDF naive Bayes model over merchant names.
type hintModel struct {
	cl      *bayesian.Classifier
	vocab   map[string]bool
	classes []bayesian.Class
}

// trainHints returns nil when fewer than two categories are available.
func trainHints(list []Example) *hintModel {
	seen := make(map[string]bool)
	var classes []bayesian.Class
	for _, ex := range list {
		if ex.Category == "" || seen[ex.Category] {
			continue
		}
		seen[ex.Category] = true
		classes = append(classes, bayesian.Class(ex.Category))
	}
	if len(classes) < 2 {
		return nil
	}

	cl := bayesian.NewClassifierTfIdf(classes...)
	vocab := make(map[string]bool)
	for _, ex := range list {
		terms := merchantTerms(ex.Merchant)
		if len(terms) == 0 || ex.Category == "" {
			continue
		}
		for _, t := range terms {
			vocab[t] = true
		}
		cl.Learn(terms, bayesian.Class(ex.Category))
	}
	cl.ConvertTermsFreqToTfIdf()

	return &hintModel{cl: cl, vocab: vocab, classes: classes}
}

// merchantTerms lower-cases a merchant name and splits it on non-alphanumerics.
func merchantTerms(merchant string) []string {
	return strings.FieldsFunc(strings.ToLower(merchant), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Suggest returns up to n category hints for a merchant, best first.
// Merchants sharing no terms with the seed corpus get no hints.
func (p *Provider) Suggest(merchant string, n int) []Hint {
	if p.hints == nil || n <= 0 {
		return nil
	}

	terms := merchantTerms(merchant)
	if !p.hints.known(terms) {
		return nil
	}

	scores, _, _ := p.hints.cl.LogScores(terms)
	hints := make([]Hint, 0, len(scores))
	for i, score := range scores {
		hints = append(hints, Hint{Category: string(p.hints.classes[i]), Score: score})
	}
	sort.SliceStable(hints, func(i, j int) bool { return hints[i].Score > hints[j].Score })

	if len(hints) > n {
		hints = hints[:n]
	}
	return hints
}

func (h *hintModel) known(terms []string) bool {
	for _, t := range terms {
		if h.vocab[t] {
			return true
		}
	}
	return false
}
