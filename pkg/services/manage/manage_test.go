package manage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/de-tools/industry-reports/pkg/services/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Upload(ctx context.Context, key, src string) error {
	args := m.Called(ctx, key, src)
	return args.Error(0)
}

type fixture struct {
	root       string
	reportsDir string
	sourceDir  string
	metadata   string
	manager    *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:       root,
		reportsDir: filepath.Join(root, "reports"),
		sourceDir:  filepath.Join(root, "incoming"),
		metadata:   filepath.Join(root, "config", "metadata.json"),
	}
	require.NoError(t, os.MkdirAll(f.sourceDir, 0o755))
	f.manager = NewManager(Options{
		ReportsDir:   f.reportsDir,
		MetadataPath: f.metadata,
		BackupRoot:   filepath.Join(root, "backups"),
	})
	f.manager.now = func() time.Time {
		return time.Date(2025, 9, 1, 12, 30, 45, 0, time.UTC)
	}
	return f
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestUpdate_DefaultFilesFromMetadata(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.sourceDir, "en-short.html"), "Hello")
	writeFile(t, filepath.Join(f.sourceDir, "cn-short.html"), "你好")
	writeFile(t, filepath.Join(f.sourceDir, "notes.txt"), "ignored")

	mtime := time.Date(2025, 8, 30, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(f.sourceDir, "en-short.html"), mtime, mtime))

	result, err := f.manager.Update(context.Background(), f.sourceDir, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"cn-short.html", "en-short.html"}, result.Updated)
	assert.Equal(t, []string{"cn-long.html", "en-long.html"}, result.Missing)

	data, err := os.ReadFile(filepath.Join(f.reportsDir, "en-short.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))

	info, err := os.Stat(filepath.Join(f.reportsDir, "en-short.html"))
	require.NoError(t, err)
	assert.True(t, mtime.Equal(info.ModTime()))

	_, err = os.Stat(filepath.Join(f.reportsDir, "notes.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpdate_Pattern(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.sourceDir, "weekly-a.html"), "a")
	writeFile(t, filepath.Join(f.sourceDir, "weekly-b.html"), "b")
	writeFile(t, filepath.Join(f.sourceDir, "draft.md"), "c")

	result, err := f.manager.Update(context.Background(), f.sourceDir, "*.html")
	require.NoError(t, err)
	assert.Equal(t, []string{"weekly-a.html", "weekly-b.html"}, result.Updated)
	assert.Empty(t, result.Missing)
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Update(context.Background(), filepath.Join(f.root, "absent"), "")
	assert.ErrorIs(t, err, ErrNoSourceDir)

	result, err := f.manager.Update(context.Background(), f.sourceDir, "*.pdf")
	require.NoError(t, err)
	assert.Empty(t, result.Updated)
}

func TestUpdate_SameDirectoryKeepsContent(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.reportsDir, "en-short.html"), "Hello")

	_, err := f.manager.Update(context.Background(), f.reportsDir, "*.html")
	assert.ErrorIs(t, err, ErrSameFile)

	data, err := os.ReadFile(filepath.Join(f.reportsDir, "en-short.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
}

func TestBackup(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.reportsDir, "en-short.html"), "Hello")
	writeFile(t, filepath.Join(f.reportsDir, "cn-short.html"), "你好")
	writeFile(t, filepath.Join(f.reportsDir, "readme.txt"), "skip")

	sink := new(mockSink)
	sink.On("Upload", mock.Anything, "reports_20250901_123045/cn-short.html", mock.Anything).Return(nil)
	sink.On("Upload", mock.Anything, "reports_20250901_123045/en-short.html", mock.Anything).Return(nil)
	f.manager.sink = sink

	dir, err := f.manager.Backup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.root, "backups", "reports_20250901_123045"), dir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"cn-short.html", "en-short.html"}, names)
	sink.AssertExpectations(t)
}

func TestBackup_ExplicitDirAndSinkFailure(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.reportsDir, "en-short.html"), "Hello")

	sink := new(mockSink)
	sink.On("Upload", mock.Anything, "manual/en-short.html", mock.Anything).Return(errors.New("boom"))
	f.manager.sink = sink

	_, err := f.manager.Backup(context.Background(), filepath.Join(f.root, "manual"))
	assert.ErrorContains(t, err, "boom")

	data, err := os.ReadFile(filepath.Join(f.root, "manual", "en-short.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
}

func TestBackup_IntoReportsDirKeepsContent(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.reportsDir, "en-short.html"), "Hello")

	_, err := f.manager.Backup(context.Background(), f.reportsDir)
	assert.ErrorIs(t, err, ErrSameFile)

	data, err := os.ReadFile(filepath.Join(f.reportsDir, "en-short.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))
}

func TestCheckSource(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.root, "plain.txt"), "x")

	assert.NoError(t, CheckSource(f.sourceDir))
	assert.ErrorIs(t, CheckSource(filepath.Join(f.root, "absent")), ErrNoSourceDir)
	assert.ErrorIs(t, CheckSource(filepath.Join(f.root, "plain.txt")), ErrNoSourceDir)
}

func TestBackup_NoReportsDir(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Backup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoReportsDir)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	writeFile(t, filepath.Join(f.reportsDir, "en-short.html"), "Hello")
	writeFile(t, filepath.Join(f.reportsDir, "cn-long.html"), "0123456789")
	writeFile(t, filepath.Join(f.reportsDir, "other.css"), "body{}")

	files, err := f.manager.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "cn-long.html", files[0].Name)
	assert.Equal(t, int64(10), files[0].Size)
	assert.Equal(t, "en-short.html", files[1].Name)
	assert.Equal(t, int64(5), files[1].Size)
}

func TestUpdateMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snapshot, err := f.manager.UpdateMetadata(ctx, "2025-09-01 to 2025-09-08", "")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01 to 2025-09-08", snapshot.CurrentPeriod)
	assert.Equal(t, registry.Default().LastUpdated, snapshot.LastUpdated)
	assert.Equal(t, registry.Default().Reports, snapshot.Reports)

	snapshot, err = f.manager.UpdateMetadata(ctx, "", "September 8, 2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01 to 2025-09-08", snapshot.CurrentPeriod)
	assert.Equal(t, "September 8, 2025", snapshot.LastUpdated)

	persisted, err := registry.Load(ctx, f.metadata)
	require.NoError(t, err)
	assert.Equal(t, snapshot, persisted)
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, registry.Save(f.metadata, domain.Snapshot{
		Reports: []domain.Report{
			{ID: "a", File: "a.html"},
			{ID: "b", File: "b.html"},
		},
	}))
	writeFile(t, filepath.Join(f.reportsDir, "a.html"), "a")

	missing, err := f.manager.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.html"}, missing)
}
