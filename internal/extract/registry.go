package extract

import (
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
)

// Registry maps template IDs to rule sets.
type Registry struct {
	sets  map[string]RuleSet
	order []string
}

// NewRegistry returns a registry holding every built-in rule set.
func NewRegistry() *Registry {
	r := &Registry{sets: map[string]RuleSet{}}
	for _, rs := range []RuleSet{
		hotSprings(), rosePetal(), whitePetal(),
		occupational(), hipaa(),
		hmgs(), stMarks(),
		genericInvoice(), genericConsent(), genericIntake(),
	} {
		r.Register(rs)
	}
	return r
}

// Register adds or replaces the rule set named rs.Name().
func (r *Registry) Register(rs RuleSet) {
	if _, ok := r.sets[rs.Name()]; !ok {
		r.order = append(r.order, rs.Name())
	}
	r.sets[rs.Name()] = rs
}

func (r *Registry) Get(name string) (RuleSet, bool) {
	rs, ok := r.sets[name]
	return rs, ok
}

// Names lists registered rule sets in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Select picks the rule set for a classified document. Unforeseen documents,
// unknown template IDs and templates whose class contradicts an explicitly
// requested class get the generic rule set. For ClassAuto the class follows
// the template, and invoice when the template has none.
func (r *Registry) Select(templateID string, class constants.DocClass, unforeseen bool) RuleSet {
	if class == constants.ClassAuto || class == "" {
		if c, ok := constants.ClassOfTemplate(templateID); ok {
			class = c
		} else {
			class = constants.ClassInvoice
		}
	}
	if !unforeseen {
		if rs, ok := r.sets[templateID]; ok && rs.Class() == class {
			return rs
		}
	}
	if rs, ok := r.sets[constants.GenericTemplate(class)]; ok {
		return rs
	}
	return r.sets[constants.TemplateGenericInvoice]
}

// IdentifierHint returns the first template whose literal identifier phrase
// occurs in text, or "".
func (r *Registry) IdentifierHint(text string) string {
	upper := strings.ToUpper(text)
	for _, name := range r.order {
		ids, ok := r.sets[name].(interface{ Identifiers() []string })
		if !ok {
			continue
		}
		for _, id := range ids.Identifiers() {
			if strings.Contains(upper, strings.ToUpper(id)) {
				return name
			}
		}
	}
	return ""
}
