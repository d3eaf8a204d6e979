package registry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/de-tools/industry-reports/pkg/metrics"
	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/de-tools/industry-reports/pkg/services/content"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("report not found")

// Registry holds the current report snapshot and answers lookups
type Registry interface {
	// GetAll returns the full snapshot in insertion order
	GetAll(ctx context.Context) domain.Snapshot
	// GetByID returns the report with exactly the given id, or ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Report, error)
	// Replace validates and publishes a new snapshot in one step
	Replace(ctx context.Context, snapshot domain.Snapshot) error
}

type snapshotRegistry struct {
	current atomic.Pointer[domain.Snapshot]
}

// New creates a registry publishing the given snapshot.
func New(snapshot domain.Snapshot) (Registry, error) {
	r := &snapshotRegistry{}
	if err := r.Replace(context.Background(), snapshot); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *snapshotRegistry) GetAll(_ context.Context) domain.Snapshot {
	return r.current.Load().Clone()
}

func (r *snapshotRegistry) GetByID(_ context.Context, id string) (domain.Report, error) {
	report, ok := r.current.Load().Find(id)
	if !ok {
		return domain.Report{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return report, nil
}

func (r *snapshotRegistry) Replace(ctx context.Context, snapshot domain.Snapshot) error {
	if err := Validate(snapshot); err != nil {
		return err
	}

	next := snapshot.Clone()
	r.current.Store(&next)
	metrics.RegistryReports.Set(float64(len(next.Reports)))

	zerolog.Ctx(ctx).Debug().
		Int("reports", len(next.Reports)).
		Str("period", next.CurrentPeriod).
		Msg("published report snapshot")
	return nil
}

// Validate checks that ids are present and unique and that every backing
// file is a safe relative path.
func Validate(snapshot domain.Snapshot) error {
	seen := make(map[string]struct{}, len(snapshot.Reports))
	for i, r := range snapshot.Reports {
		if r.ID == "" {
			return fmt.Errorf("report #%d: missing id", i)
		}
		if _, exists := seen[r.ID]; exists {
			return fmt.Errorf("report %q: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}

		if err := content.ValidateFile(r.File); err != nil {
			return fmt.Errorf("report %q: %w", r.ID, err)
		}
	}
	return nil
}

// Sanitize drops entries that would fail Validate, logging each one.
func Sanitize(ctx context.Context, snapshot domain.Snapshot) domain.Snapshot {
	logger := zerolog.Ctx(ctx)

	out := domain.Snapshot{
		CurrentPeriod: snapshot.CurrentPeriod,
		LastUpdated:   snapshot.LastUpdated,
		Reports:       make([]domain.Report, 0, len(snapshot.Reports)),
	}
	seen := make(map[string]struct{}, len(snapshot.Reports))
	for i, r := range snapshot.Reports {
		if r.ID == "" {
			logger.Warn().Int("index", i).Msg("skipping report without id")
			continue
		}
		if _, exists := seen[r.ID]; exists {
			logger.Warn().Str("report", r.ID).Msg("skipping report with duplicate id")
			continue
		}
		if err := content.ValidateFile(r.File); err != nil {
			logger.Warn().Err(err).Str("report", r.ID).Msg("skipping report with invalid file")
			continue
		}
		seen[r.ID] = struct{}{}
		out.Reports = append(out.Reports, r)
	}
	return out
}
