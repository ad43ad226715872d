package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run applied migrations.
	db, err = Init(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestProjectRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)

	p := &domain.Project{Name: "novel", SourceLang: "auto", FileType: "txt", Status: domain.StatusDraft}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	require.NoError(t, repo.AddTargetLang(ctx, p.ID, "de"))
	require.NoError(t, repo.AddTargetLang(ctx, p.ID, "fr"))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "novel", got.Name)
	assert.Equal(t, domain.StatusDraft, got.Status)
	assert.ElementsMatch(t, []string{"de", "fr"}, got.TargetLangs)

	require.NoError(t, repo.UpdateProgress(ctx, p.ID, domain.StatusProcessing, 3, 10))
	got, err = repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Equal(t, 3, got.CompletedChunks)
	assert.Equal(t, 10, got.TotalChunks)
	assert.Equal(t, 0.3, got.Progress)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestProjectGetMissing(t *testing.T) {
	repo := NewProjectRepo(testDB(t))
	_, err := repo.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, ports.ErrProjectNotFound))
}

func TestProjectFiles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProjectRepo(db)

	p := &domain.Project{Name: "p", SourceLang: "auto", FileType: "txt", Status: domain.StatusDraft}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.AddFile(ctx, &domain.ProjectFile{
		ProjectID: p.ID, Name: "a.txt", Size: 5, Content: "hello", DetectedType: "txt",
	}))

	files, err := repo.ListFiles(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "hello", files[0].Content)
}

func TestChunkLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	projects := NewProjectRepo(db)
	chunks := NewChunkRepo(db)

	p := &domain.Project{Name: "p", SourceLang: "auto", FileType: "txt", Status: domain.StatusReady}
	require.NoError(t, projects.Create(ctx, p))

	batch := []*domain.Chunk{
		{ProjectID: p.ID, Seq: 0, TargetLang: "de", SourceText: "one", Outcome: domain.OutcomePending},
		{ProjectID: p.ID, Seq: 1, TargetLang: "de", SourceText: "two", Outcome: domain.OutcomePending},
		{ProjectID: p.ID, Seq: 0, TargetLang: "fr", SourceText: "one", Outcome: domain.OutcomePending},
	}
	require.NoError(t, chunks.CreateBatch(ctx, batch))
	for _, c := range batch {
		require.NotZero(t, c.ID)
	}

	n, err := chunks.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Ordered by (target_lang, seq).
	all, err := chunks.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "de", all[0].TargetLang)
	assert.Equal(t, 0, all[0].Seq)
	assert.Equal(t, "de", all[1].TargetLang)
	assert.Equal(t, 1, all[1].Seq)
	assert.Equal(t, "fr", all[2].TargetLang)

	de, err := chunks.ListByProjectLang(ctx, p.ID, "de")
	require.NoError(t, err)
	assert.Len(t, de, 2)

	require.NoError(t, chunks.UpdateOutcome(ctx, batch[0].ID, domain.OutcomeSuccess, "eins", 1, ""))
	require.NoError(t, chunks.UpdateOutcome(ctx, batch[1].ID, domain.OutcomeFailed, "", 3, "rate limited"))

	got, err := chunks.Get(ctx, batch[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, got.Outcome)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, "rate limited", got.LastError)

	reset, err := chunks.ResetFailed(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reset)

	got, err = chunks.Get(ctx, batch[1].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePending, got.Outcome)
	assert.Zero(t, got.Attempts)
	assert.Equal(t, "rate limited", got.LastError, "prior error is kept for diagnostics")

	// Successful chunks are untouched by the reset.
	got, err = chunks.Get(ctx, batch[0].ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, got.Outcome)
	assert.Equal(t, "eins", got.TranslatedText)
}

func TestDeleteProjectCascades(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	projects := NewProjectRepo(db)
	chunks := NewChunkRepo(db)

	p := &domain.Project{Name: "p", SourceLang: "auto", FileType: "txt", Status: domain.StatusReady}
	require.NoError(t, projects.Create(ctx, p))
	require.NoError(t, chunks.CreateBatch(ctx, []*domain.Chunk{
		{ProjectID: p.ID, Seq: 0, TargetLang: "de", SourceText: "x", Outcome: domain.OutcomePending},
	}))
	require.NoError(t, projects.AddTargetLang(ctx, p.ID, "de"))

	require.NoError(t, projects.Delete(ctx, p.ID))

	n, err := chunks.CountByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	langs, err := projects.ListTargetLangs(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, langs)
}

func TestProviderAndModelCache(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewProviderRepo(db)

	p := &domain.Provider{Type: "ollama", Name: "local", BaseURL: "http://localhost:11434", Model: "llama3"}
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.SaveModelCache(ctx, p.ID, []string{"llama3", "mistral"}))
	// Replacing the cache drops stale entries.
	require.NoError(t, repo.SaveModelCache(ctx, p.ID, []string{"llama3"}))

	models, err := repo.ListModelCache(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3", models[0].Name)
}

func TestCacheRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewCacheRepo(db)

	miss, err := repo.Get(ctx, "hello", "en", "de", "ollama", "llama3")
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, repo.Put(ctx, &domain.CacheEntry{
		SourceText: "hello", SrcLang: "en", TgtLang: "de",
		Provider: "ollama", Model: "llama3", Translation: "hallo",
	}))
	// Same key again replaces rather than duplicates.
	require.NoError(t, repo.Put(ctx, &domain.CacheEntry{
		SourceText: "hello", SrcLang: "en", TgtLang: "de",
		Provider: "ollama", Model: "llama3", Translation: "hallo!",
	}))

	hit, err := repo.Get(ctx, "hello", "en", "de", "ollama", "llama3")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "hallo!", hit.Translation)
}

func TestSettings(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewSettingsRepo(db)

	val, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, repo.Set(ctx, domain.SettingActiveProvider, "1"))
	require.NoError(t, repo.Set(ctx, domain.SettingActiveProvider, "2"))

	val, err = repo.Get(ctx, domain.SettingActiveProvider)
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}
