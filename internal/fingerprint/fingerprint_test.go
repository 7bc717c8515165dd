package fingerprint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/internal/layout"
)

func sampleDoc() *layout.Document {
	return &layout.Document{
		ID: "inv",
		Pages: []layout.Page{
			{
				Width:  600,
				Height: 800,
				Text:   "HOT SPRINGS GENERAL HOSPITAL\nInvoice consent\nHospital footer",
				Tokens: []layout.Token{
					// header band: bottom <= 160
					{Text: "HOT", Top: 40, Bottom: 50, FontName: "Arial-Bold", FontSize: 14},
					// body
					{Text: "Invoice", Top: 400, Bottom: 410, FontName: "Arial", FontSize: 10},
					{Text: "ab", Top: 420, Bottom: 430, FontName: "Times", FontSize: 10},
					// footer band: bottom >= 640
					{Text: "Hospital", Top: 700, Bottom: 710, FontName: "Arial", FontSize: 8},
					{Text: "  ", Top: 700, Bottom: 710, FontName: "Ignored", FontSize: 99},
				},
			},
			{Width: 400, Height: 600},
		},
	}
}

func TestComputeSlots(t *testing.T) {
	e := NewExtractor(Config{})
	fp := e.Compute(sampleDoc())
	s := e.Schema()
	require.Equal(t, 15, s.Len())
	require.Len(t, fp.Values, 15)

	get := func(slot string) float64 { return fp.Values[s.Index(slot)] }

	// 3 + 7 + 2 + 8 = 20 characters
	assert.Equal(t, 2.0, get(SlotPageCount))
	assert.Equal(t, 500.0, get(SlotAvgWidth))
	assert.Equal(t, 700.0, get(SlotAvgHeight))
	assert.InDelta(t, 3.0/20, get(SlotHeaderDensity), 1e-12)
	assert.InDelta(t, 8.0/20, get(SlotFooterDensity), 1e-12)
	assert.InDelta(t, 9.0/20, get(SlotBodyDensity), 1e-12)
	assert.InDelta(t, (3*14+7*10+2*10+8*8)/20.0, get(SlotAvgFontSize), 1e-12)

	// "hot springs general hospital" matches both phrases of the group
	assert.Equal(t, 2.0, get(SlotHotSprings))
	assert.Equal(t, 2.0, get(SlotHospital))
	assert.Equal(t, 1.0, get(SlotConsent))
	assert.Equal(t, 0.0, get(SlotRosePetal))
	assert.Equal(t, 0.0, get(SlotAuthorization))

	assert.Equal(t, []string{"Arial", "Arial-Bold", "Times"}, fp.TopFonts)
	assert.Equal(t, "Arial", fp.PrimaryFont())
}

func TestComputeDeterministic(t *testing.T) {
	e := NewExtractor(Config{})
	doc := sampleDoc()
	assert.True(t, e.Compute(doc).Equal(e.Compute(doc)))
}

func TestComputeEmptyDocuments(t *testing.T) {
	e := NewExtractor(Config{})
	for name, doc := range map[string]*layout.Document{
		"nil":        nil,
		"no pages":   {},
		"blank page": {Pages: []layout.Page{{Width: 612, Height: 792}}},
		"one char":   {Pages: []layout.Page{{Width: 612, Height: 792, Text: "x", Tokens: []layout.Token{{Text: "x", Top: 10, Bottom: 20, FontSize: 9}}}}},
	} {
		t.Run(name, func(t *testing.T) {
			fp := e.Compute(doc)
			require.Len(t, fp.Values, e.Schema().Len())
			assert.NotNil(t, fp.TopFonts)
			for i, v := range fp.Values {
				assert.GreaterOrEqual(t, v, 0.0, "slot %s", e.Schema().Slots[i])
			}
		})
	}
}

func TestTopFontsTieKeepsFirstSeen(t *testing.T) {
	order := []string{"B", "A", "C", "D"}
	counts := map[string]int{"A": 2, "B": 2, "C": 5, "D": 1}
	assert.Equal(t, []string{"C", "B", "A"}, topFonts(order, counts, 3))
}

func TestLoadKeywordGroups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - slot: kw_lab\n    phrases: [lab panel, LAB]\n"), 0o644))

	groups, err := LoadKeywordGroups(path)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	e := NewExtractor(Config{Keywords: groups})
	assert.Equal(t, []string{
		SlotPageCount, SlotAvgWidth, SlotAvgHeight, SlotHeaderDensity,
		SlotFooterDensity, SlotBodyDensity, SlotAvgFontSize, "kw_lab",
	}, e.Schema().Slots)

	fp := e.Compute(&layout.Document{Pages: []layout.Page{{Text: "Lab Panel"}}})
	assert.Equal(t, 2.0, fp.Values[7])
}

func TestLoadKeywordGroupsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  - slot: avg_width\n    phrases: [x]\n"), 0o644))
	_, err := LoadKeywordGroups(path)
	require.Error(t, err)
}
