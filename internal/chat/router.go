package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/textnorm"
)

// Keyword sets are matched at word starts in normalized text.
var (
	depositWords  = []string{"saved", "deposit", "added", "add ", "put ", "ahorre", "deposite", "abone", "agregue", "puse", "meti"}
	ruleWords     = []string{"rule", "regla"}
	addWords      = []string{"add", "new", "create", "agrega", "anade", "nueva", "crea"}
	removeWords   = []string{"remove", "delete", "drop", "elimina", "borra", "quita"}
	deleteWords   = []string{"delete", "remove", "cancel", "drop", "elimina", "borra", "cancela", "quita"}
	completeWords = []string{"complete", "finished", "achieved", "reached", "done with", "completa", "cumpli", "logre", "termine", "alcance"}
	updateWords   = []string{
		"change", "update", "modify", "edit", "rename", "extend", "postpone", "push back",
		"increase", "decrease", "raise", "lower", "move",
		"cambia", "actualiza", "modifica", "edita", "renombra", "extiende", "pospon", "aumenta", "reduce", "sube", "baja",
	}
	goalWords   = []string{"goal", "save for", "saving for", "save up", "want to save", "meta", "objetivo", "ahorrar"}
	renameWords = []string{"rename", "title", "call it", "renombra", "titulo", "llamala"}
)

var (
	amountPattern   = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	isoDatePattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	durationPattern = regexp.MustCompile(`\b(\d+)\s*(months?|meses|mes|years?|anos?|weeks?|semanas?)\b`)
	durationWords   = regexp.MustCompile(`\b(months?|years?|weeks?|days?|meses|mes|anos?|semanas?|dias?|by|until|before|para el|antes de)\b`)
	positionPattern = regexp.MustCompile(`(?:rule|regla|#)\s*(?:number|numero|no\.?|#)?\s*(\d+)`)
	quotedPattern   = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|«([^»]+)»`)
	renameToPattern = regexp.MustCompile(`(?i)\b(?:to|as|a)\s+(.+)$`)
)

// Normalize lower-cases text, folds accents and collapses whitespace.
func Normalize(text string) string {
	return textnorm.Normalize(text)
}

type detector func(u utterance) Intent

// detectors run in precedence order; the first non-nil intent wins.
var detectors = []detector{
	detectDeposit,
	detectRuleAdd,
	detectRuleRemove,
	detectDelete,
	detectComplete,
	detectUpdate,
	detectCreate,
}

type utterance struct {
	raw   string
	norm  string
	goals []model.SavingsGoal
}

// Route classifies an utterance against the user's goals.
func Route(text string, existing []model.SavingsGoal) Intent {
	u := utterance{raw: strings.TrimSpace(text), norm: Normalize(text), goals: existing}
	for _, detect := range detectors {
		if intent := detect(u); intent != nil {
			return intent
		}
	}
	return GeneralIntent{}
}

// MatchGoal returns the first goal whose normalized title appears in the
// normalized text.
func MatchGoal(norm string, existing []model.SavingsGoal) (*model.SavingsGoal, bool) {
	for i := range existing {
		title := Normalize(existing[i].Title)
		if title != "" && strings.Contains(norm, title) {
			return &existing[i], true
		}
	}
	return nil, false
}

// target picks the named goal, falling back to the first one.
func (u utterance) target() (*model.SavingsGoal, bool) {
	if g, ok := MatchGoal(u.norm, u.goals); ok {
		return g, true
	}
	if len(u.goals) == 0 {
		return nil, false
	}
	return &u.goals[0], true
}

func (u utterance) has(words ...string) bool {
	return textnorm.ContainsAnyWord(u.norm, words...)
}

func detectDeposit(u utterance) Intent {
	if !u.has(depositWords...) || u.has(ruleWords...) {
		return nil
	}
	g, ok := MatchGoal(u.norm, u.goals)
	if !ok {
		return nil
	}
	amount, ok := ParseAmount(strings.Replace(u.norm, Normalize(g.Title), " ", 1))
	if !ok {
		return nil
	}
	return DepositIntent{GoalID: g.ID, Amount: amount}
}

func detectRuleAdd(u utterance) Intent {
	if !u.has(ruleWords...) || !u.has(addWords...) || u.has(removeWords...) {
		return nil
	}
	g, ok := u.target()
	if !ok {
		return nil
	}
	rule := ruleText(u.raw)
	if rule == "" {
		return nil
	}
	return RuleAddIntent{GoalID: g.ID, Rule: rule}
}

func detectRuleRemove(u utterance) Intent {
	if !u.has(ruleWords...) || !u.has(removeWords...) {
		return nil
	}
	g, ok := u.target()
	if !ok {
		return nil
	}
	if m := positionPattern.FindStringSubmatch(u.norm); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return RuleRemoveIntent{GoalID: g.ID, Position: n}
		}
	}
	if text := ruleText(u.raw); text != "" {
		return RuleRemoveIntent{GoalID: g.ID, Text: text}
	}
	return nil
}

func detectDelete(u utterance) Intent {
	if !u.has(deleteWords...) {
		return nil
	}
	g, ok := u.target()
	if !ok {
		return nil
	}
	return DeleteIntent{GoalID: g.ID}
}

func detectComplete(u utterance) Intent {
	if !u.has(completeWords...) {
		return nil
	}
	g, ok := u.target()
	if !ok {
		return nil
	}
	return CompleteIntent{GoalID: g.ID}
}

func detectUpdate(u utterance) Intent {
	if !u.has(updateWords...) {
		return nil
	}
	g, ok := u.target()
	if !ok {
		return nil
	}
	return UpdateIntent{GoalID: g.ID, Utterance: u.raw, Changes: parseChanges(u, g)}
}

func detectCreate(u utterance) Intent {
	if !u.has(goalWords...) {
		return nil
	}
	if _, ok := ParseAmount(u.norm); !ok && !durationWords.MatchString(u.norm) {
		return nil
	}
	return CreateGoalIntent{Utterance: u.raw}
}

// ParseAmount returns the first positive number in text. Commas are read as
// thousands separators.
func ParseAmount(text string) (float64, bool) {
	for _, m := range amountPattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(m, ","), ",", ""), 64)
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// ruleText returns quoted text, else the text after the first colon.
func ruleText(raw string) string {
	if m := quotedPattern.FindStringSubmatch(raw); m != nil {
		for _, group := range m[1:] {
			if s := strings.TrimSpace(group); s != "" {
				return s
			}
		}
	}
	if _, after, ok := strings.Cut(raw, ":"); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// parseChanges reads a new title, date or amount out of an update request.
// Durations such as "3 months" move the current target date.
func parseChanges(u utterance, g *model.SavingsGoal) goals.Changes {
	var c goals.Changes
	rest := strings.Replace(u.norm, Normalize(g.Title), " ", 1)

	if u.has(renameWords...) {
		if title := renameTitle(u.raw); title != "" {
			c.Title = &title
			rest = strings.Replace(rest, Normalize(title), " ", 1)
		}
	}

	if d := isoDatePattern.FindString(rest); d != "" {
		if t, err := time.Parse(model.DateLayout, d); err == nil {
			c.Date = &t
		}
		rest = strings.Replace(rest, d, " ", 1)
	} else if m := durationPattern.FindStringSubmatch(rest); m != nil {
		n, _ := strconv.Atoi(m[1])
		t := shift(g.TargetDate, n, m[2])
		c.Date = &t
		rest = strings.Replace(rest, m[0], " ", 1)
	}

	if amount, ok := ParseAmount(rest); ok {
		c.Amount = &amount
	}
	return c
}

func renameTitle(raw string) string {
	if m := quotedPattern.FindStringSubmatch(raw); m != nil {
		for _, group := range m[1:] {
			if s := strings.TrimSpace(group); s != "" {
				return s
			}
		}
	}
	if m := renameToPattern.FindStringSubmatch(raw); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), ".!")
	}
	return ""
}

func shift(from time.Time, n int, unit string) time.Time {
	switch {
	case strings.HasPrefix(unit, "year"), strings.HasPrefix(unit, "ano"):
		return from.AddDate(n, 0, 0)
	case strings.HasPrefix(unit, "week"), strings.HasPrefix(unit, "semana"):
		return from.AddDate(0, 0, 7*n)
	default:
		return from.AddDate(0, n, 0)
	}
}
