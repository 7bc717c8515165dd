package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/layout"
)

func vec(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestBuildAverages(t *testing.T) {
	fps := []fingerprint.Fingerprint{
		{Values: []float64{1, 10, 0}, TopFonts: []string{"A", "B"}},
		{Values: []float64{3, 20, 4}, TopFonts: []string{"B", "C", "A"}},
		{Values: []float64{5, 30, 2}, TopFonts: []string{"D"}},
	}
	p, ok := Build("invoice_rose_petal", fps)
	require.True(t, ok)
	assert.Equal(t, "invoice_rose_petal", p.TemplateID)
	assert.Equal(t, []float64{3, 20, 2}, p.Values)
	assert.Equal(t, []string{"A", "B", "C"}, p.TopFonts)
}

func TestBuildEmptyAndMismatched(t *testing.T) {
	_, ok := Build("x", nil)
	assert.False(t, ok)

	p, ok := Build("x", []fingerprint.Fingerprint{
		{Values: []float64{2, 2}},
		{Values: []float64{100}},
		{Values: []float64{4, 6}},
	})
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4}, p.Values)
	assert.Equal(t, []string{}, p.TopFonts)
}

func TestStoreIsImmutable(t *testing.T) {
	schema := fingerprint.Schema{Version: "t", Slots: []string{"a", "b"}}
	s1 := NewStore(schema, Profile{TemplateID: "one", Values: []float64{1, 2}})
	s2 := s1.With(Profile{TemplateID: "two", Values: []float64{3, 4}})
	s3 := s2.With(Profile{TemplateID: "one", Values: []float64{9, 9}})

	assert.Equal(t, []string{"one"}, s1.IDs())
	assert.Equal(t, []string{"one", "two"}, s2.IDs())
	assert.Equal(t, []string{"one", "two"}, s3.IDs())

	p, ok := s1.Get("one")
	require.True(t, ok)
	p.Values[0] = 42
	again, _ := s1.Get("one")
	assert.Equal(t, []float64{1, 2}, again.Values)

	replaced, _ := s3.Get("one")
	assert.Equal(t, []float64{9, 9}, replaced.Values)

	var nilStore *Store
	assert.Equal(t, 0, nilStore.Len())
	_, ok = nilStore.Get("one")
	assert.False(t, ok)
}

func TestJSONRoundTrip(t *testing.T) {
	schema := fingerprint.DefaultSchema()
	n := schema.Len()
	store := NewStore(schema,
		Profile{TemplateID: "invoice_white_petal", Values: vec(n, func(i int) float64 { return float64(i) / 3 }), TopFonts: []string{"Helvetica", "Helvetica-Bold"}},
		Profile{TemplateID: "consent_hipaa", Values: vec(n, func(i int) float64 { return 0.1 * float64(i*i) }), TopFonts: nil},
		Profile{TemplateID: "intake_hmgs", Values: vec(n, func(int) float64 { return 612 })},
	)

	var first bytes.Buffer
	require.NoError(t, store.WriteJSON(&first))

	loaded, err := ReadJSON(bytes.NewReader(first.Bytes()), schema)
	require.NoError(t, err)
	assert.Equal(t, store.IDs(), loaded.IDs())
	for _, want := range store.Profiles() {
		got, ok := loaded.Get(want.TemplateID)
		require.True(t, ok)
		assert.Equal(t, want.Values, got.Values)
		assert.Equal(t, want.TopFonts, got.TopFonts)
	}

	var second bytes.Buffer
	require.NoError(t, loaded.WriteJSON(&second))
	assert.Equal(t, first.String(), second.String())

	var generic map[string]map[string]any
	require.NoError(t, json.Unmarshal(first.Bytes(), &generic))
	assert.Contains(t, generic["consent_hipaa"], "top_fonts")
	assert.Contains(t, generic["consent_hipaa"], fingerprint.SlotHIPAA)
}

func TestReadJSONMissingSlotsAndOrder(t *testing.T) {
	schema := fingerprint.DefaultSchema()
	in := `{"zeta": {"page_count": 2, "avg_width": 612.5, "unknown": "ignored"},
	        "alpha": {"kw_hipaa": 3, "top_fonts": ["Arial"]}}`

	store, err := ReadJSON(strings.NewReader(in), schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, store.IDs())

	z, _ := store.Get("zeta")
	require.Len(t, z.Values, schema.Len())
	assert.Equal(t, 2.0, z.Values[schema.Index(fingerprint.SlotPageCount)])
	assert.Equal(t, 612.5, z.Values[schema.Index(fingerprint.SlotAvgWidth)])
	assert.Equal(t, 0.0, z.Values[schema.Index(fingerprint.SlotHIPAA)])
	assert.Equal(t, []string{}, z.TopFonts)

	a, _ := store.Get("alpha")
	assert.Equal(t, 3.0, a.Values[schema.Index(fingerprint.SlotHIPAA)])
	assert.Equal(t, []string{"Arial"}, a.TopFonts)
}

func TestReadJSONErrors(t *testing.T) {
	schema := fingerprint.DefaultSchema()
	for name, in := range map[string]string{
		"not object":  `[1,2]`,
		"bad number":  `{"a": {"page_count": "two"}}`,
		"bad fonts":   `{"a": {"top_fonts": 5}}`,
		"truncated":   `{"a": {"page_count": 1}`,
		"entry array": `{"a": [1]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(in), schema)
			require.Error(t, err)
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	schema := fingerprint.DefaultSchema()
	store := NewStore(schema, Profile{TemplateID: "t", Values: make([]float64, schema.Len()), TopFonts: []string{"F"}})
	path := filepath.Join(t.TempDir(), "out", "profiles.json")
	require.NoError(t, store.SaveFile(path))

	loaded, err := LoadFile(path, schema)
	require.NoError(t, err)
	p, ok := loaded.Get("t")
	require.True(t, ok)
	assert.Equal(t, []string{"F"}, p.TopFonts)
}

func writeLayout(t *testing.T, path string, doc layout.Document) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func page(text, font string, size float64) layout.Page {
	return layout.Page{
		Width: 612, Height: 792, Text: text,
		Tokens: []layout.Token{{Text: text, X0: 10, Top: 300, X1: 200, Bottom: 310, FontName: font, FontSize: size}},
	}
}

func TestBuildFromDirectory(t *testing.T) {
	root := t.TempDir()
	writeLayout(t, filepath.Join(root, "invoice_rose_petal", "a.json"), layout.Document{Pages: []layout.Page{page("ROSE PETAL CLINIC", "Arial", 10)}})
	writeLayout(t, filepath.Join(root, "invoice_rose_petal", "b.json"), layout.Document{Pages: []layout.Page{page("Rose Petal invoice", "Arial", 12)}})
	writeLayout(t, filepath.Join(root, "consent_hipaa", "c.json"), layout.Document{Pages: []layout.Page{page("HIPAA Authorization", "Times", 9)}})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "intake_hmgs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "consent_hipaa", "broken.json"), []byte("{"), 0o644))

	ext := fingerprint.NewExtractor(fingerprint.Config{})
	b := NewBuilder(layout.JSONProvider{}, ext, nil)
	store, stats, err := b.BuildFromDirectory(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"consent_hipaa", "invoice_rose_petal"}, store.IDs())
	assert.Equal(t, 3, stats.Templates)
	assert.Equal(t, 2, stats.Built)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)

	rose, _ := store.Get("invoice_rose_petal")
	schema := ext.Schema()
	assert.Equal(t, 11.0, rose.Values[schema.Index(fingerprint.SlotAvgFontSize)])
	// "rose petal clinic" counts both phrases; "rose petal invoice" one
	assert.Equal(t, 1.5, rose.Values[schema.Index(fingerprint.SlotRosePetal)])
	assert.Equal(t, []string{"Arial"}, rose.TopFonts)
}

type memRepo struct {
	saved *Store
}

func (m *memRepo) ReplaceAll(_ context.Context, s *Store) error {
	m.saved = s
	return nil
}

func (m *memRepo) Load(_ context.Context, schema fingerprint.Schema) (*Store, error) {
	if m.saved == nil {
		return NewStore(schema), nil
	}
	return m.saved, nil
}

func TestService(t *testing.T) {
	ctx := context.Background()
	b := NewBuilder(layout.JSONProvider{}, fingerprint.NewExtractor(fingerprint.Config{}), nil)

	noRepo := NewService(b, nil, nil)
	_, err := noRepo.BuildProfile(ctx, " ", nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	p, err := noRepo.BuildProfile(ctx, "intake_hmgs", nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	err = noRepo.Publish(ctx, NewStore(b.Schema()))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	repo := &memRepo{}
	svc := NewService(b, repo, nil)
	p, err = svc.BuildProfile(ctx, "intake_hmgs", []*layout.Document{{Pages: []layout.Page{page("HMGS Dermatology", "Arial", 10)}}})
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NoError(t, svc.Publish(ctx, NewStore(b.Schema(), *p)))
	listed, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"intake_hmgs"}, listed.IDs())
}
