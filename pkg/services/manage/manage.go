package manage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/de-tools/industry-reports/pkg/services/content"
	"github.com/de-tools/industry-reports/pkg/services/registry"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

const (
	reportExt       = ".html"
	backupTimestamp = "20060102_150405"
)

var (
	ErrNoReportsDir = errors.New("no reports directory found")
	ErrNoSourceDir  = errors.New("source directory not found")
	ErrSameFile     = errors.New("source and destination are the same file")
)

// BackupSink receives a copy of every file written to a backup directory.
type BackupSink interface {
	Upload(ctx context.Context, key, src string) error
}

type Options struct {
	ReportsDir   string
	MetadataPath string
	BackupRoot   string
	Sink         BackupSink
}

// Manager implements the report file maintenance operations
type Manager struct {
	reportsDir   string
	metadataPath string
	backupRoot   string
	sink         BackupSink
	now          func() time.Time
}

func NewManager(opts Options) *Manager {
	backupRoot := opts.BackupRoot
	if backupRoot == "" {
		backupRoot = "backups"
	}
	return &Manager{
		reportsDir:   opts.ReportsDir,
		metadataPath: opts.MetadataPath,
		backupRoot:   backupRoot,
		sink:         opts.Sink,
		now:          time.Now,
	}
}

// CheckSource reports ErrNoSourceDir unless dir exists and is a directory.
func CheckSource(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoSourceDir, dir)
	}
	return nil
}

type UpdateResult struct {
	Updated []string
	Missing []string
}

// Update copies report files from sourceDir into the reports directory. With
// an empty pattern the files named by the current metadata are expected;
// otherwise every top-level file matching pattern is copied.
func (m *Manager) Update(ctx context.Context, sourceDir, pattern string) (UpdateResult, error) {
	logger := zerolog.Ctx(ctx)

	if err := CheckSource(sourceDir); err != nil {
		return UpdateResult{}, err
	}

	names, err := m.selectFiles(ctx, sourceDir, pattern)
	if err != nil {
		return UpdateResult{}, err
	}

	if err := os.MkdirAll(m.reportsDir, 0o755); err != nil {
		return UpdateResult{}, fmt.Errorf("failed to create reports directory: %w", err)
	}

	var result UpdateResult
	for _, name := range names {
		src, err := content.Resolve(sourceDir, name)
		if err != nil {
			return result, err
		}
		dst, err := content.Resolve(m.reportsDir, name)
		if err != nil {
			return result, err
		}

		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("file", name).Msg("missing report file in source")
			result.Missing = append(result.Missing, name)
			continue
		}

		if err := copyFile(src, dst); err != nil {
			return result, fmt.Errorf("failed to update %s: %w", name, err)
		}
		logger.Info().Str("file", name).Msg("updated report file")
		result.Updated = append(result.Updated, name)
	}

	return result, nil
}

func (m *Manager) selectFiles(ctx context.Context, sourceDir, pattern string) ([]string, error) {
	if pattern == "" {
		snapshot, err := registry.LoadOrDefault(ctx, m.metadataPath)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(snapshot.Reports))
		for _, r := range snapshot.Reports {
			names = append(names, r.File)
		}
		return names, nil
	}

	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && g.Match(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Backup copies every report file into dir, or into a timestamped directory
// under the backup root when dir is empty, and returns the directory used.
func (m *Manager) Backup(ctx context.Context, dir string) (string, error) {
	logger := zerolog.Ctx(ctx)

	files, err := m.List(ctx)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = filepath.Join(m.backupRoot, "reports_"+m.now().Format(backupTimestamp))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	for _, f := range files {
		src := filepath.Join(m.reportsDir, f.Name)
		dst := filepath.Join(dir, f.Name)
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", f.Name, err)
		}

		if m.sink != nil {
			key := path.Join(filepath.Base(dir), f.Name)
			if err := m.sink.Upload(ctx, key, dst); err != nil {
				return "", err
			}
		}
	}

	logger.Info().Str("dir", dir).Int("files", len(files)).Msg("backup created")
	return dir, nil
}

// List returns the report files in the reports directory sorted by name.
func (m *Manager) List(_ context.Context) ([]domain.ReportFile, error) {
	entries, err := os.ReadDir(m.reportsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoReportsDir
		}
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var files []domain.ReportFile
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), reportExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", e.Name(), err)
		}
		files = append(files, domain.ReportFile{
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// UpdateMetadata rewrites the persisted metadata, overriding the period and
// last-updated strings when they are non-empty. The built-in defaults are
// used as the base when no metadata file exists yet.
func (m *Manager) UpdateMetadata(ctx context.Context, period, lastUpdated string) (domain.Snapshot, error) {
	snapshot, err := registry.LoadOrDefault(ctx, m.metadataPath)
	if err != nil {
		return domain.Snapshot{}, err
	}

	if period != "" {
		snapshot.CurrentPeriod = period
	}
	if lastUpdated != "" {
		snapshot.LastUpdated = lastUpdated
	}

	if err := registry.Save(m.metadataPath, snapshot); err != nil {
		return domain.Snapshot{}, err
	}

	zerolog.Ctx(ctx).Info().Str("path", m.metadataPath).Msg("updated metadata")
	return snapshot, nil
}

// Check returns the backing files named by the metadata that are absent.
func (m *Manager) Check(ctx context.Context) ([]string, error) {
	snapshot, err := registry.LoadOrDefault(ctx, m.metadataPath)
	if err != nil {
		return nil, err
	}
	return content.NewReader(m.reportsDir).Check(ctx, snapshot.Reports), nil
}

// copyFile copies src to dst keeping the permission bits and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	// Opening dst with O_TRUNC would empty src when both name the same file.
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(info, dstInfo) {
		return fmt.Errorf("%w: %s", ErrSameFile, dst)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
