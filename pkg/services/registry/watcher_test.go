package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, Save(path, Default()))

	reg, err := New(Default())
	require.NoError(t, err)

	w := NewWatcher(path, reg, zerolog.New(zerolog.NewTestWriter(t)))
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	next := domain.Snapshot{
		CurrentPeriod: "2025-09-01 to 2025-09-08",
		LastUpdated:   "September 8, 2025",
		Reports:       []domain.Report{{ID: "en-short", File: "en-short.html"}},
	}
	require.NoError(t, Save(path, next))

	assert.Eventually(t, func() bool {
		return reg.GetAll(context.Background()).CurrentPeriod == next.CurrentPeriod
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, reg.GetAll(context.Background()).Reports, 1)

	w.Stop()
}

func TestWatcher_KeepsSnapshotOnBadReload(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, Save(path, Default()))

	reg, err := New(Default())
	require.NoError(t, err)

	w := NewWatcher(path, reg, zerolog.New(zerolog.NewTestWriter(t)))
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, Default(), reg.GetAll(context.Background()))
	w.Stop()
	w.Stop()
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	reg, err := New(Default())
	require.NoError(t, err)

	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "metadata.json"), reg, zerolog.Nop())
	assert.Error(t, w.Start(context.Background()))
}
