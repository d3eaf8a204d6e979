package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/de-tools/industry-reports/pkg/adapters"
	"github.com/de-tools/industry-reports/pkg/models/api"
	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

// metadataEntry uses pointers so that absent keys can be told apart from empty strings.
type metadataEntry struct {
	ID          *string `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Type        *string `json:"type"`
	File        *string `json:"file"`
}

func (e metadataEntry) report() (api.Report, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"id", e.ID},
		{"title", e.Title},
		{"description", e.Description},
		{"language", e.Language},
		{"type", e.Type},
		{"file", e.File},
	}
	for _, f := range fields {
		if f.value == nil {
			return api.Report{}, fmt.Errorf("missing required field %q", f.name)
		}
	}
	return api.Report{
		ID:          *e.ID,
		Title:       *e.Title,
		Description: *e.Description,
		Language:    *e.Language,
		Type:        *e.Type,
		File:        *e.File,
	}, nil
}

type metadataFile struct {
	CurrentPeriod string            `json:"current_period"`
	LastUpdated   string            `json:"last_updated"`
	Reports       []json.RawMessage `json:"reports"`
}

// Default is the built-in snapshot used when no metadata file has been written yet.
func Default() domain.Snapshot {
	return domain.Snapshot{
		CurrentPeriod: "2025-08-25 to 2025-09-01",
		LastUpdated:   "September 1, 2025",
		Reports: []domain.Report{
			{
				ID:          "cn-long",
				Title:       "中文详细版",
				Description: "完整的中文行业分析报告",
				Language:    "zh",
				Type:        "detailed",
				File:        "cn-long.html",
			},
			{
				ID:          "cn-short",
				Title:       "中文简化版",
				Description: "简化的中文行业概览",
				Language:    "zh",
				Type:        "summary",
				File:        "cn-short.html",
			},
			{
				ID:          "en-long",
				Title:       "English Detailed",
				Description: "Comprehensive English industry analysis",
				Language:    "en",
				Type:        "detailed",
				File:        "en-long.html",
			},
			{
				ID:          "en-short",
				Title:       "English Summary",
				Description: "Concise English industry overview",
				Language:    "en",
				Type:        "summary",
				File:        "en-short.html",
			},
		},
	}
}

// Load reads a persisted metadata file. Entries that are not objects of
// strings, that lack any of the six report keys, or that fail validation are
// skipped with a warning.
func Load(ctx context.Context, path string) (domain.Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var raw metadataFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to parse metadata file %s: %w", path, err)
	}

	snapshot := domain.Snapshot{
		CurrentPeriod: raw.CurrentPeriod,
		LastUpdated:   raw.LastUpdated,
	}
	for i, entry := range raw.Reports {
		var fields metadataEntry
		if err := json.Unmarshal(entry, &fields); err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping malformed report entry")
			continue
		}
		report, err := fields.report()
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping incomplete report entry")
			continue
		}
		snapshot.Reports = append(snapshot.Reports, adapters.MapApiReportToDomainReport(report))
	}

	return Sanitize(ctx, snapshot), nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does not exist.
func LoadOrDefault(ctx context.Context, path string) (domain.Snapshot, error) {
	snapshot, err := Load(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		zerolog.Ctx(ctx).Info().Str("path", path).Msg("metadata file not found, using built-in defaults")
		return Default(), nil
	}
	return snapshot, err
}

// Save writes the snapshot as indented JSON, replacing path atomically.
func Save(path string, snapshot domain.Snapshot) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(adapters.MapDomainSnapshotToApiSnapshot(snapshot)); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".metadata-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary metadata file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set metadata permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace metadata file: %w", err)
	}
	return nil
}
