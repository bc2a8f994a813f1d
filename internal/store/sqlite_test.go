package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDims = 4

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func newTestStoreWithMeta(t *testing.T) *SQLiteStore {
	t.Helper()

	s := newTestStore(t)
	_, err := s.EnsureMeta("/project", ProviderOllama, "nomic-embed-text", testDims)
	require.NoError(t, err)

	return s
}

// vec builds a normalized test embedding pointing along one axis.
func vec(axis int) []float32 {
	v := make([]float32, testDims)
	v[axis] = 1
	return v
}

func TestMetaNilOnFreshStore(t *testing.T) {
	s := newTestStore(t)

	meta, err := s.Meta()
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestEnsureMetaFirstUse(t *testing.T) {
	s := newTestStore(t)

	meta, err := s.EnsureMeta("/project", ProviderOllama, "nomic-embed-text", testDims)
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, "/project", meta.RootPath)
	assert.Equal(t, ProviderOllama, meta.EmbeddingProvider)
	assert.Equal(t, "nomic-embed-text", meta.EmbeddingModel)
	assert.Equal(t, testDims, meta.EmbeddingDimensions)
	assert.False(t, meta.CreatedAt.IsZero())

	// Readable back
	got, err := s.Meta()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, meta.EmbeddingModel, got.EmbeddingModel)
}

func TestEnsureMetaIdempotent(t *testing.T) {
	s := newTestStoreWithMeta(t)

	meta, err := s.EnsureMeta("/project", ProviderOllama, "nomic-embed-text", testDims)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", meta.EmbeddingModel)
}

func TestEnsureMetaModelMismatch(t *testing.T) {
	s := newTestStoreWithMeta(t)

	_, err := s.EnsureMeta("/project", ProviderOllama, "mxbai-embed-large", testDims)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModelMismatch)
}

func TestEnsureMetaDimensionMismatch(t *testing.T) {
	s := newTestStoreWithMeta(t)

	_, err := s.EnsureMeta("/project", ProviderOllama, "nomic-embed-text", testDims*2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestReplaceFileUnitsAndList(t *testing.T) {
	s := newTestStoreWithMeta(t)

	units := []UnitInput{
		{Symbol: "ParseConfig", Line: 10, Description: "Parses the config.", Embedding: vec(0)},
		{Symbol: "Server", Line: 42, Description: "The HTTP server.", Embedding: vec(1)},
	}
	require.NoError(t, s.ReplaceFileUnits("src/config.go", "aaaa", "go", units))

	got, err := s.ListFileUnits("src/config.go")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ParseConfig", got[0].Symbol)
	assert.Equal(t, 10, got[0].Line)
	assert.Equal(t, "aaaa", got[0].Fingerprint)
	assert.Equal(t, "go", got[0].Language)
	assert.Equal(t, "Server", got[1].Symbol)
}

func TestReplaceFileUnitsReplacesCohort(t *testing.T) {
	s := newTestStoreWithMeta(t)

	old := []UnitInput{
		{Symbol: "OldOne", Line: 1, Description: "old", Embedding: vec(0)},
		{Symbol: "OldTwo", Line: 2, Description: "old", Embedding: vec(1)},
		{Symbol: "OldThree", Line: 3, Description: "old", Embedding: vec(2)},
	}
	require.NoError(t, s.ReplaceFileUnits("a.go", "h1", "go", old))

	updated := []UnitInput{
		{Symbol: "NewOne", Line: 5, Description: "new", Embedding: vec(3)},
	}
	require.NoError(t, s.ReplaceFileUnits("a.go", "h2", "go", updated))

	got, err := s.ListFileUnits("a.go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NewOne", got[0].Symbol)
	assert.Equal(t, "h2", got[0].Fingerprint)

	// The old fingerprint is gone with the old cohort
	has, err := s.HasFingerprint("h1")
	require.NoError(t, err)
	assert.False(t, has)

	// Vectors track the rows exactly
	report, err := s.VerifyIntegrity()
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 1, report.UnitRows)
	assert.Equal(t, 1, report.VectorRows)
}

func TestHasFingerprintAcrossFiles(t *testing.T) {
	s := newTestStoreWithMeta(t)

	units := []UnitInput{{Symbol: "Shared", Line: 1, Description: "shared", Embedding: vec(0)}}
	require.NoError(t, s.ReplaceFileUnits("original.go", "samehash", "go", units))

	// Same fingerprint is visible regardless of file identity
	has, err := s.HasFingerprint("samehash")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasFingerprint("otherhash")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasFile(t *testing.T) {
	s := newTestStoreWithMeta(t)

	has, err := s.HasFile("a.go")
	require.NoError(t, err)
	assert.False(t, has)

	units := []UnitInput{{Symbol: "A", Line: 1, Description: "a", Embedding: vec(0)}}
	require.NoError(t, s.ReplaceFileUnits("a.go", "h", "go", units))

	has, err = s.HasFile("a.go")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDeleteFileUnits(t *testing.T) {
	s := newTestStoreWithMeta(t)

	units := []UnitInput{
		{Symbol: "Gone", Line: 1, Description: "gone", Embedding: vec(0)},
		{Symbol: "GoneToo", Line: 2, Description: "gone", Embedding: vec(1)},
	}
	require.NoError(t, s.ReplaceFileUnits("dead.go", "h", "go", units))
	require.NoError(t, s.DeleteFileUnits("dead.go"))

	got, err := s.ListFileUnits("dead.go")
	require.NoError(t, err)
	assert.Empty(t, got)

	report, err := s.VerifyIntegrity()
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 0, report.UnitRows)
	assert.Equal(t, 0, report.VectorRows)
}

func TestDeleteFileUnitsMissingFile(t *testing.T) {
	s := newTestStoreWithMeta(t)
	assert.NoError(t, s.DeleteFileUnits("never-existed.go"))
}

func TestListFileIDs(t *testing.T) {
	s := newTestStoreWithMeta(t)

	require.NoError(t, s.ReplaceFileUnits("b.go", "h1", "go", []UnitInput{
		{Symbol: "B", Line: 1, Description: "b", Embedding: vec(0)},
	}))
	require.NoError(t, s.ReplaceFileUnits("a.go", "h2", "go", []UnitInput{
		{Symbol: "A1", Line: 1, Description: "a", Embedding: vec(1)},
		{Symbol: "A2", Line: 5, Description: "a", Embedding: vec(2)},
	}))

	ids, err := s.ListFileIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, ids)
}

func TestSearchOrdersByDistance(t *testing.T) {
	s := newTestStoreWithMeta(t)

	require.NoError(t, s.ReplaceFileUnits("mixed.go", "h", "go", []UnitInput{
		{Symbol: "Exact", Line: 1, Description: "exact match", Embedding: []float32{1, 0, 0, 0}},
		{Symbol: "Close", Line: 2, Description: "close match", Embedding: []float32{0.9, 0.1, 0, 0}},
		{Symbol: "Far", Line: 3, Description: "far away", Embedding: []float32{0, 0, 0, 1}},
	}))

	results, err := s.Search([]float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Exact", results[0].Unit.Symbol)
	assert.Equal(t, "Close", results[1].Unit.Symbol)
	assert.LessOrEqual(t, results[0].Distance, results[1].Distance)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestSearchEmptyStore(t *testing.T) {
	s := newTestStore(t)

	results, err := s.Search(vec(0), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFewerUnitsThanK(t *testing.T) {
	s := newTestStoreWithMeta(t)

	require.NoError(t, s.ReplaceFileUnits("one.go", "h", "go", []UnitInput{
		{Symbol: "Only", Line: 1, Description: "only unit", Embedding: vec(0)},
	}))

	results, err := s.Search(vec(0), 20)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestStats(t *testing.T) {
	s := newTestStoreWithMeta(t)

	require.NoError(t, s.ReplaceFileUnits("a.go", "h1", "go", []UnitInput{
		{Symbol: "A1", Line: 1, Description: "a", Embedding: vec(0)},
		{Symbol: "A2", Line: 2, Description: "a", Embedding: vec(1)},
	}))
	require.NoError(t, s.ReplaceFileUnits("b.ts", "h2", "typescript", []UnitInput{
		{Symbol: "B", Line: 1, Description: "b", Embedding: vec(2)},
	}))

	stats, err := s.Stats()
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 3, stats.UnitCount)
	assert.Equal(t, 2, stats.LanguageCounts["go"])
	assert.Equal(t, 1, stats.LanguageCounts["typescript"])
}

func TestStatsEmpty(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FileCount)
	assert.Equal(t, 0, stats.UnitCount)
}

func TestReplaceFileUnitsEmptyCohort(t *testing.T) {
	s := newTestStoreWithMeta(t)

	require.NoError(t, s.ReplaceFileUnits("a.go", "h1", "go", []UnitInput{
		{Symbol: "A", Line: 1, Description: "a", Embedding: vec(0)},
	}))

	// Replacing with an empty cohort clears the file
	require.NoError(t, s.ReplaceFileUnits("a.go", "h2", "go", nil))

	got, err := s.ListFileUnits("a.go")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	s1, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	_, err = s1.EnsureMeta("/project", ProviderOllama, "nomic-embed-text", testDims)
	require.NoError(t, err)
	require.NoError(t, s1.ReplaceFileUnits("a.go", "h", "go", []UnitInput{
		{Symbol: "Durable", Line: 1, Description: "survives reopen", Embedding: vec(0)},
	}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	meta, err := s2.Meta()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "nomic-embed-text", meta.EmbeddingModel)

	units, err := s2.ListFileUnits("a.go")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Durable", units[0].Symbol)

	results, err := s2.Search(vec(0), 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Durable", results[0].Unit.Symbol)
}
