package importer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csvextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/csv"
	mdextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/markdown"
	"github.com/alhaneef/text-weaver-pro/internal/adapters/extract/registry"
	textextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/text"
	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]*domain.Project
	files    map[int64][]*domain.ProjectFile
	langs    map[int64][]string
	chunks   []*domain.Chunk
	settings map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[int64]*domain.Project{},
		files:    map[int64][]*domain.ProjectFile{},
		langs:    map[int64][]string{},
		settings: map[string]string{},
	}
}

func (m *memStore) Create(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) Get(_ context.Context, id int64) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, ports.ErrProjectNotFound
	}
	cp := *p
	cp.TargetLangs = append([]string(nil), m.langs[id]...)
	return &cp, nil
}

func (m *memStore) List(context.Context) ([]*domain.Project, error)   { return nil, nil }
func (m *memStore) Update(_ context.Context, p *domain.Project) error { return nil }
func (m *memStore) Delete(_ context.Context, id int64) error          { return nil }

func (m *memStore) UpdateProgress(_ context.Context, id int64, status domain.Status, completed, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	p.Status = status
	p.CompletedChunks = completed
	p.TotalChunks = total
	return nil
}

func (m *memStore) AddTargetLang(_ context.Context, projectID int64, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.langs[projectID] = append(m.langs[projectID], lang)
	return nil
}

func (m *memStore) ListTargetLangs(_ context.Context, projectID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.langs[projectID], nil
}

func (m *memStore) AddFile(_ context.Context, f *domain.ProjectFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[f.ProjectID] = append(m.files[f.ProjectID], f)
	return nil
}

func (m *memStore) ListFiles(_ context.Context, projectID int64) ([]*domain.ProjectFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[projectID], nil
}

func (m *memStore) CreateBatch(_ context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memStore) GetChunk(context.Context, int64) (*domain.Chunk, error) { return nil, nil }

func (m *memStore) CountByProject(_ context.Context, projectID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.chunks {
		if c.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SettingGet(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings[key], nil
}

func (m *memStore) SettingSet(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Interface adapters over memStore so one fixture backs all three ports.
type chunkPort struct{ *memStore }

func (c chunkPort) Get(ctx context.Context, id int64) (*domain.Chunk, error) {
	return c.GetChunk(ctx, id)
}
func (c chunkPort) ListByProject(context.Context, int64) ([]*domain.Chunk, error) { return nil, nil }
func (c chunkPort) ListByProjectLang(context.Context, int64, string) ([]*domain.Chunk, error) {
	return nil, nil
}
func (c chunkPort) UpdateOutcome(context.Context, int64, domain.Outcome, string, int, string) error {
	return nil
}
func (c chunkPort) ResetFailed(context.Context, int64) (int64, error) { return 0, nil }

type settingsPort struct{ *memStore }

func (s settingsPort) Get(ctx context.Context, key string) (string, error) {
	return s.SettingGet(ctx, key)
}
func (s settingsPort) Set(ctx context.Context, key, value string) error {
	return s.SettingSet(ctx, key, value)
}

func newService(store *memStore) *Service {
	reg := registry.New()
	reg.Register(textextract.New())
	reg.Register(mdextract.New())
	reg.Register(csvextract.New())
	reg.SetFallback(textextract.New())
	return New(Deps{
		Projects: store,
		Chunks:   chunkPort{store},
		Settings: settingsPort{store},
		Extract:  reg,
	}, Config{ChunkTokenBudget: 5, ChunkSlack: 0.2})
}

func TestCreateProjectSingleFileNamesFromStem(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, err := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "report.txt", Data: []byte("Hello world.")},
	}, MethodTraditional)
	require.NoError(t, err)

	assert.Equal(t, "report", p.Name)
	assert.Equal(t, "txt", p.FileType)
	assert.Equal(t, domain.StatusDraft, p.Status)
	assert.Equal(t, "auto", p.SourceLang)

	files, _ := store.ListFiles(context.Background(), p.ID)
	require.Len(t, files, 1)
	assert.Equal(t, "Hello world.", files[0].Content)
	assert.Equal(t, "txt", files[0].DetectedType)
}

func TestCreateProjectMultiFile(t *testing.T) {
	s := newService(newMemStore())

	p, err := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "a.txt", Data: []byte("First.")},
		{Name: "b.md", Data: []byte("# Second")},
	}, MethodTraditional)
	require.NoError(t, err)

	assert.Equal(t, "Multi-File Project", p.Name)
	assert.Equal(t, "mixed", p.FileType)
}

func TestCreateProjectExplicitNameWins(t *testing.T) {
	s := newService(newMemStore())

	p, err := s.CreateProject(context.Background(), "My Novel", []UploadedFile{
		{Name: "draft.txt", Data: []byte("Once upon a time.")},
	}, MethodTraditional)
	require.NoError(t, err)
	assert.Equal(t, "My Novel", p.Name)
}

func TestCreateProjectRequiresFiles(t *testing.T) {
	s := newService(newMemStore())
	_, err := s.CreateProject(context.Background(), "x", nil, MethodTraditional)
	require.Error(t, err)
}

func TestCreateProjectInvalidContentIsTerminal(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, err := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "bad.txt", Data: []byte{0xff, 0xfe, 0xfd}},
	}, MethodTraditional)
	require.Error(t, err)
	var chunkErr *ports.ChunkingError
	require.ErrorAs(t, err, &chunkErr)

	stored, _ := store.Get(context.Background(), p.ID)
	assert.Equal(t, domain.StatusError, stored.Status)
}

func TestAddTargetLangCreatesPendingChunks(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, err := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "story.txt", Data: []byte("One two three four five. Six seven eight nine ten.")},
	}, MethodTraditional)
	require.NoError(t, err)

	require.NoError(t, s.AddTargetLang(context.Background(), p.ID, "de"))

	stored, _ := store.Get(context.Background(), p.ID)
	assert.Equal(t, domain.StatusReady, stored.Status)
	assert.Equal(t, []string{"de"}, stored.TargetLangs)
	assert.Equal(t, 2, stored.TotalChunks)

	for i, c := range store.chunks {
		assert.Equal(t, i, c.Seq)
		assert.Equal(t, "de", c.TargetLang)
		assert.Equal(t, domain.OutcomePending, c.Outcome)
	}
}

func TestAddSecondLangChunksIdentically(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, _ := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "story.txt", Data: []byte("One two three four five. Six seven eight nine ten.")},
	}, MethodTraditional)
	require.NoError(t, s.AddTargetLang(context.Background(), p.ID, "de"))
	require.NoError(t, s.AddTargetLang(context.Background(), p.ID, "fr"))

	stored, _ := store.Get(context.Background(), p.ID)
	assert.Equal(t, 4, stored.TotalChunks)

	// Same boundaries per language.
	texts := map[string][]string{}
	for _, c := range store.chunks {
		texts[c.TargetLang] = append(texts[c.TargetLang], c.SourceText)
	}
	assert.Equal(t, texts["de"], texts["fr"])
}

func TestAddTargetLangRejectsDuplicate(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, _ := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "story.txt", Data: []byte("Words here.")},
	}, MethodTraditional)
	require.NoError(t, s.AddTargetLang(context.Background(), p.ID, "de"))
	require.Error(t, s.AddTargetLang(context.Background(), p.ID, "de"))
}

func TestAddTargetLangIllegalWhileProcessing(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, _ := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "story.txt", Data: []byte("Words here.")},
	}, MethodTraditional)
	store.projects[p.ID].Status = domain.StatusProcessing

	err := s.AddTargetLang(context.Background(), p.ID, "de")
	var tErr *ports.InvalidTransitionError
	require.ErrorAs(t, err, &tErr)
}

func TestAIMethodFallsBackWithoutProvider(t *testing.T) {
	store := newMemStore()
	s := newService(store)

	p, err := s.CreateProject(context.Background(), "", []UploadedFile{
		{Name: "doc.txt", Data: []byte("Keep me intact.")},
	}, MethodAI)
	require.NoError(t, err)

	files, _ := store.ListFiles(context.Background(), p.ID)
	assert.Equal(t, "Keep me intact.", files[0].Content)
}
