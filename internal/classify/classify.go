// Package classify matches a document fingerprint against template profiles.
package classify

import (
	"math"
	"sort"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/profiles"
)

// Config holds the similarity model constants. Zero values take defaults.
type Config struct {
	Threshold       float64 // below this a document is unforeseen; default 0.85
	FontBonus       float64 // added when primary fonts match; default 0.05
	IdentityPenalty float64 // multiplier when the document has no identity keyword; default 0.5
	FormBonus       float64 // added when the document has a form keyword; default 0.5

	IdentitySlots []string // default kw_hot_springs, kw_rose_petal, kw_white_petal
	FormSlots     []string // default kw_consent, kw_hipaa, kw_authorization
}

// DefaultConfig returns the default constants.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.85,
		FontBonus:       0.05,
		IdentityPenalty: 0.5,
		FormBonus:       0.5,
		IdentitySlots:   []string{fingerprint.SlotHotSprings, fingerprint.SlotRosePetal, fingerprint.SlotWhitePetal},
		FormSlots:       []string{fingerprint.SlotConsent, fingerprint.SlotHIPAA, fingerprint.SlotAuthorization},
	}
}

// Result is the outcome of one classification.
type Result struct {
	TemplateID   string  `json:"template_id"`
	Score        float64 `json:"score"`
	IsUnforeseen bool    `json:"is_unforeseen"`
}

// Candidate is one scored profile.
type Candidate struct {
	TemplateID string  `json:"template_id"`
	Score      float64 `json:"score"`
}

// Classifier scores fingerprints against a fixed profile store. It is
// read-only after construction and safe for concurrent use.
type Classifier struct {
	cfg      Config
	store    *profiles.Store
	identity []int
	form     []int
}

func New(store *profiles.Store, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.Threshold == 0 {
		cfg.Threshold = def.Threshold
	}
	if cfg.FontBonus == 0 {
		cfg.FontBonus = def.FontBonus
	}
	if cfg.IdentityPenalty == 0 {
		cfg.IdentityPenalty = def.IdentityPenalty
	}
	if cfg.FormBonus == 0 {
		cfg.FormBonus = def.FormBonus
	}
	if cfg.IdentitySlots == nil {
		cfg.IdentitySlots = def.IdentitySlots
	}
	if cfg.FormSlots == nil {
		cfg.FormSlots = def.FormSlots
	}
	schema := fingerprint.DefaultSchema()
	if store != nil {
		schema = store.Schema()
	}
	return &Classifier{
		cfg:      cfg,
		store:    store,
		identity: indexes(schema, cfg.IdentitySlots),
		form:     indexes(schema, cfg.FormSlots),
	}
}

// MissingSlots lists the identity and form slots of c that s lacks. A slot
// that is missing never fires: a missing identity slot counts as zero and a
// missing form slot never earns the bonus.
func (c Config) MissingSlots(s fingerprint.Schema) (identity, form []string) {
	for _, slot := range c.IdentitySlots {
		if s.Index(slot) < 0 {
			identity = append(identity, slot)
		}
	}
	for _, slot := range c.FormSlots {
		if s.Index(slot) < 0 {
			form = append(form, slot)
		}
	}
	return identity, form
}

func indexes(s fingerprint.Schema, slots []string) []int {
	out := make([]int, 0, len(slots))
	for _, slot := range slots {
		if i := s.Index(slot); i >= 0 {
			out = append(out, i)
		}
	}
	return out
}

// Config returns the effective constants.
func (c *Classifier) Config() Config { return c.cfg }

// Classify returns the best matching template. Ties keep the profile that
// comes first in the store. With no scorable profile the result is
// ("unknown", 0, unforeseen).
func (c *Classifier) Classify(fp fingerprint.Fingerprint) Result {
	best := Result{TemplateID: constants.TemplateUnknown, Score: 0, IsUnforeseen: true}
	found := false
	c.store.Each(func(p profiles.Profile) {
		s, ok := c.score(fp, p)
		if !ok {
			return
		}
		if !found || s > best.Score {
			best.TemplateID = p.TemplateID
			best.Score = s
			found = true
		}
	})
	if !found {
		return Result{TemplateID: constants.TemplateUnknown, Score: 0, IsUnforeseen: true}
	}
	best.IsUnforeseen = best.Score < c.cfg.Threshold
	return best
}

// Rank scores every scorable profile, best first. Equal scores keep store
// order.
func (c *Classifier) Rank(fp fingerprint.Fingerprint) []Candidate {
	var out []Candidate
	c.store.Each(func(p profiles.Profile) {
		if s, ok := c.score(fp, p); ok {
			out = append(out, Candidate{TemplateID: p.TemplateID, Score: s})
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (c *Classifier) score(fp fingerprint.Fingerprint, p profiles.Profile) (float64, bool) {
	if len(fp.Values) != len(p.Values) || len(fp.Values) == 0 {
		return 0, false
	}
	s := Cosine(fp.Values, p.Values)
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, false
	}

	if a, b := fp.PrimaryFont(), p.Fingerprint().PrimaryFont(); a != "" && a == b {
		s = clamp(s + c.cfg.FontBonus)
	}
	if allZero(fp.Values, c.identity) {
		s = clamp(s * c.cfg.IdentityPenalty)
	}
	if anyNonZero(fp.Values, c.form) {
		s = clamp(s + c.cfg.FormBonus)
	}
	return clamp(s), true
}

// Cosine is the cosine similarity of a and b, or 0 when either has zero
// norm. a and b must have equal length.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func allZero(v []float64, idx []int) bool {
	for _, i := range idx {
		if v[i] != 0 {
			return false
		}
	}
	return true
}

func anyNonZero(v []float64, idx []int) bool {
	for _, i := range idx {
		if v[i] != 0 {
			return true
		}
	}
	return false
}
