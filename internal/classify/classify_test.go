package classify

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/profiles"
)

var schema = fingerprint.DefaultSchema()

func vector(base []float64, kw map[string]float64) []float64 {
	v := make([]float64, schema.Len())
	copy(v, base)
	for slot, val := range kw {
		v[schema.Index(slot)] = val
	}
	return v
}

var invoiceBase = []float64{1, 612, 792, 0.2, 0.05, 0.75, 10}

func TestExactMatchScoresOne(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotRosePetal: 2, fingerprint.SlotClinic: 1})
	store := profiles.NewStore(schema, profiles.Profile{TemplateID: constants.TemplateRosePetal, Values: v, TopFonts: []string{"Arial"}})

	res := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: v, TopFonts: []string{"Arial"}})
	assert.Equal(t, constants.TemplateRosePetal, res.TemplateID)
	assert.Equal(t, 1.0, res.Score)
	assert.False(t, res.IsUnforeseen)
}

func TestIdentityPenaltyIsExactlyHalf(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotHospital: 1})
	store := profiles.NewStore(schema, profiles.Profile{TemplateID: "t", Values: v, TopFonts: []string{"Times"}})

	res := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: v, TopFonts: []string{"Arial"}})
	assert.Equal(t, "t", res.TemplateID)
	assert.InDelta(t, 0.5, res.Score, 1e-12)
	assert.True(t, res.IsUnforeseen)
}

func TestFormBonus(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotConsent: 3})
	store := profiles.NewStore(schema, profiles.Profile{TemplateID: constants.TemplateOccupational, Values: v})

	res := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: v})
	// 1.0 * 0.5 + 0.5
	assert.InDelta(t, 1.0, res.Score, 1e-12)
	assert.False(t, res.IsUnforeseen)
}

func TestFontBonusClamps(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotWhitePetal: 1})
	store := profiles.NewStore(schema, profiles.Profile{TemplateID: "w", Values: v, TopFonts: []string{"Helvetica"}})
	c := New(store, Config{})

	assert.Equal(t, 1.0, c.Classify(fingerprint.Fingerprint{Values: v, TopFonts: []string{"Helvetica"}}).Score)

	// empty primary fonts never count as a match
	store = profiles.NewStore(schema, profiles.Profile{TemplateID: "w", Values: v, TopFonts: []string{}})
	other := vector([]float64{1, 612, 792, 0.3, 0.1, 0.6, 11}, map[string]float64{fingerprint.SlotWhitePetal: 1})
	plain := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: other, TopFonts: []string{}})
	assert.InDelta(t, Cosine(other, v), plain.Score, 1e-12)
}

func TestNoScorableProfiles(t *testing.T) {
	fp := fingerprint.Fingerprint{Values: vector(invoiceBase, nil)}
	unknown := Result{TemplateID: constants.TemplateUnknown, Score: 0, IsUnforeseen: true}

	assert.Equal(t, unknown, New(nil, Config{}).Classify(fp))
	assert.Equal(t, unknown, New(profiles.NewStore(schema), Config{}).Classify(fp))

	bad := profiles.NewStore(schema,
		profiles.Profile{TemplateID: "short", Values: []float64{1, 2}},
		profiles.Profile{TemplateID: "nan", Values: vector([]float64{math.NaN()}, nil)},
	)
	assert.Equal(t, unknown, New(bad, Config{}).Classify(fp))
	assert.Empty(t, New(bad, Config{}).Rank(fp))
}

func TestTieKeepsStoreOrder(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotHotSprings: 1})
	store := profiles.NewStore(schema,
		profiles.Profile{TemplateID: "first", Values: v},
		profiles.Profile{TemplateID: "second", Values: v},
	)
	res := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: v})
	assert.Equal(t, "first", res.TemplateID)
}

func TestZeroDocumentPicksFirstProfile(t *testing.T) {
	store := profiles.NewStore(schema,
		profiles.Profile{TemplateID: "a", Values: vector(invoiceBase, nil)},
		profiles.Profile{TemplateID: "b", Values: vector(invoiceBase, nil)},
	)
	res := New(store, Config{}).Classify(fingerprint.Fingerprint{Values: make([]float64, schema.Len())})
	assert.Equal(t, Result{TemplateID: "a", Score: 0, IsUnforeseen: true}, res)
}

func TestRankOrdersByScore(t *testing.T) {
	doc := vector(invoiceBase, map[string]float64{fingerprint.SlotRosePetal: 2})
	store := profiles.NewStore(schema,
		profiles.Profile{TemplateID: "far", Values: vector([]float64{5, 100, 100, 0, 0, 1, 30}, nil)},
		profiles.Profile{TemplateID: "near", Values: doc},
	)
	ranked := New(store, Config{}).Rank(fingerprint.Fingerprint{Values: doc})
	require.Len(t, ranked, 2)
	assert.Equal(t, "near", ranked[0].TemplateID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestCustomThreshold(t *testing.T) {
	v := vector(invoiceBase, map[string]float64{fingerprint.SlotHospital: 1})
	store := profiles.NewStore(schema, profiles.Profile{TemplateID: "t", Values: v})
	res := New(store, Config{Threshold: 0.4}).Classify(fingerprint.Fingerprint{Values: v})
	assert.False(t, res.IsUnforeseen)
}

func TestScoresStayWithinUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randVec := func() []float64 {
		v := make([]float64, schema.Len())
		for i := range v {
			if rng.Intn(3) > 0 {
				v[i] = rng.Float64() * 1000
			}
		}
		return v
	}
	fonts := []string{"Arial", "Times"}
	var ps []profiles.Profile
	for i := 0; i < 20; i++ {
		ps = append(ps, profiles.Profile{TemplateID: string(rune('a' + i)), Values: randVec(), TopFonts: []string{fonts[i%2]}})
	}
	c := New(profiles.NewStore(schema, ps...), Config{FontBonus: 0.9, FormBonus: 3})
	for i := 0; i < 200; i++ {
		fp := fingerprint.Fingerprint{Values: randVec(), TopFonts: []string{fonts[i%2]}}
		for _, cand := range c.Rank(fp) {
			assert.GreaterOrEqual(t, cand.Score, 0.0)
			assert.LessOrEqual(t, cand.Score, 1.0)
		}
		res := c.Classify(fp)
		assert.Equal(t, res.Score < 0.85, res.IsUnforeseen)
	}
}

func TestCosine(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 2}))
	assert.InDelta(t, 1.0, Cosine([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
}

func TestMissingSlots(t *testing.T) {
	s := fingerprint.NewSchema([]fingerprint.KeywordGroup{
		{Slot: fingerprint.SlotRosePetal, Phrases: []string{"ROSE PETAL"}},
		{Slot: fingerprint.SlotConsent, Phrases: []string{"consent"}},
	})
	identity, form := DefaultConfig().MissingSlots(s)
	assert.Equal(t, []string{fingerprint.SlotHotSprings, fingerprint.SlotWhitePetal}, identity)
	assert.Equal(t, []string{fingerprint.SlotHIPAA, fingerprint.SlotAuthorization}, form)

	identity, form = DefaultConfig().MissingSlots(schema)
	assert.Empty(t, identity)
	assert.Empty(t, form)
}
