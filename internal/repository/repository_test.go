package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/internal/fingerprint"
	"github.com/joseph-ayodele/docparse/internal/profiles"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func testStore(schema fingerprint.Schema) *profiles.Store {
	mk := func(id string, base float64, fonts ...string) profiles.Profile {
		v := make([]float64, schema.Len())
		for i := range v {
			v[i] = base + float64(i)
		}
		return profiles.Profile{TemplateID: id, Values: v, TopFonts: fonts}
	}
	return profiles.NewStore(schema,
		mk("invoice_white_petal", 1, "Arial", "Arial-Bold"),
		mk("consent_hipaa", 0.5),
		mk("intake_hmgs", 2, "Times"),
	)
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	v, err := MigrationVersion(context.Background(), db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	// idempotent
	require.NoError(t, Migrate(context.Background(), db))
}

func TestProfileRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), nil)
	schema := fingerprint.NewExtractor(fingerprint.Config{}).Schema()
	want := testStore(schema)

	require.NoError(t, repo.ReplaceAll(ctx, want))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := repo.Load(ctx, schema)
	require.NoError(t, err)
	assert.Equal(t, want.IDs(), got.IDs())
	for _, p := range want.Profiles() {
		q, ok := got.Get(p.TemplateID)
		require.True(t, ok)
		assert.Equal(t, p.Values, q.Values, p.TemplateID)
		assert.Equal(t, p.TopFonts, q.TopFonts, p.TemplateID)
	}
}

func TestProfileRepositoryReplaces(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), nil)
	schema := fingerprint.NewExtractor(fingerprint.Config{}).Schema()

	require.NoError(t, repo.ReplaceAll(ctx, testStore(schema)))
	only := profiles.NewStore(schema, profiles.Profile{TemplateID: "intake_stmarks", Values: make([]float64, schema.Len())})
	require.NoError(t, repo.ReplaceAll(ctx, only))

	got, err := repo.Load(ctx, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"intake_stmarks"}, got.IDs())
}

func TestLoadAgainstNarrowerSchema(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(openTestDB(t), nil)
	full := fingerprint.NewExtractor(fingerprint.Config{}).Schema()
	require.NoError(t, repo.ReplaceAll(ctx, testStore(full)))

	narrow := fingerprint.NewExtractor(fingerprint.Config{Keywords: []fingerprint.KeywordGroup{
		{Slot: "kw_lab", Phrases: []string{"lab"}},
	}}).Schema()
	got, err := repo.Load(ctx, narrow)
	require.NoError(t, err)
	p, ok := got.Get("intake_hmgs")
	require.True(t, ok)
	require.Len(t, p.Values, narrow.Len())
	assert.Equal(t, 2.0, p.Values[0])
	assert.Equal(t, 0.0, p.Values[narrow.Index("kw_lab")])
}

func TestSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docparse.db")
	db, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer db.Close(nil)
	require.NoError(t, db.HealthCheck(context.Background(), 0, nil))
	require.NoError(t, Migrate(context.Background(), db))
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	lite := &DB{Dialect: DialectSQLite}
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1, $2)`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}
