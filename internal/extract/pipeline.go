// Package extract runs per-field cascades of extraction strategies over
// normalized document text and page layout. Each template has its own rule
// set; unforeseen documents use a generic, pattern-only rule set of their
// class.
package extract

import (
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/layout"
)

// Input is what a strategy sees. Fields holds the values resolved by earlier
// rules of the same run.
type Input struct {
	Text   string
	Lines  []string
	Pages  []layout.Page
	Fields Fields
}

// Fields is a read-only view of already resolved fields.
type Fields struct {
	m map[string]any
}

// Get returns the resolved value of name, or nil.
func (f Fields) Get(name string) any {
	if f.m == nil {
		return nil
	}
	return f.m[name]
}

// String returns the value of name when it is a non-empty string.
func (f Fields) String(name string) (string, bool) {
	s, ok := f.Get(name).(string)
	return s, ok && s != ""
}

// Strategy extracts one field value. A nil result is a miss. Strategies are
// pure: they must not keep state between calls.
type Strategy func(in Input) any

// FieldRule is the ordered cascade for one output field.
type FieldRule struct {
	Field      string
	Strategies []Strategy
}

// RuleSet is the extraction recipe of one template.
type RuleSet interface {
	Name() string
	Class() constants.DocClass
	Rules() []FieldRule
}

type ruleSet struct {
	name        string
	class       constants.DocClass
	rules       []FieldRule
	identifiers []string
}

func (r *ruleSet) Name() string              { return r.name }
func (r *ruleSet) Class() constants.DocClass { return r.class }
func (r *ruleSet) Rules() []FieldRule        { return r.rules }

// Identifiers are literal phrases that only appear on this template.
func (r *ruleSet) Identifiers() []string { return r.identifiers }

// Observer receives the outcome of every field cascade.
type Observer interface {
	// FieldResolved reports the index of the strategy that produced value.
	FieldResolved(field string, strategy int, value any)
	FieldMissed(field string)
}

// Pipeline evaluates rule sets. It holds no per-document state.
type Pipeline struct {
	observer Observer
}

// NewPipeline returns a pipeline reporting to obs, which may be nil.
func NewPipeline(obs Observer) *Pipeline {
	return &Pipeline{observer: obs}
}

// Run evaluates every rule of rs in order and returns the raw field map.
// Each field keeps the first non-missing strategy result; an exhausted
// cascade leaves the field nil.
func (p *Pipeline) Run(rs RuleSet, text string, pages []layout.Page) map[string]any {
	rules := rs.Rules()
	out := make(map[string]any, len(rules))
	in := Input{
		Text:   text,
		Lines:  strings.Split(text, "\n"),
		Pages:  pages,
		Fields: Fields{m: out},
	}
	for _, rule := range rules {
		var value any
		resolved := -1
		for i, s := range rule.Strategies {
			if v := call(s, in); !Missing(v) {
				value, resolved = v, i
				break
			}
		}
		out[rule.Field] = value
		if p.observer == nil {
			continue
		}
		if resolved >= 0 {
			p.observer.FieldResolved(rule.Field, resolved, value)
		} else {
			p.observer.FieldMissed(rule.Field)
		}
	}
	return out
}

// call runs one strategy; a panicking strategy counts as a miss.
func call(s Strategy, in Input) (v any) {
	defer func() {
		if recover() != nil {
			v = nil
		}
	}()
	return s(in)
}

// Missing reports whether v counts as no result: nil, a blank string or an
// empty item list.
func Missing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []LineItem:
		return len(x) == 0
	default:
		return false
	}
}

// FirstOf combines strategies into one that returns the first hit.
func FirstOf(ss ...Strategy) Strategy {
	return func(in Input) any {
		for _, s := range ss {
			if v := s(in); !Missing(v) {
				return v
			}
		}
		return nil
	}
}
