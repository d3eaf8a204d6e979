package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/de-tools/industry-reports/pkg/models/domain"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when a report's backing file does not exist.
	ErrNotFound = errors.New("report file not found")
	// ErrUnreadable is returned when a backing file exists but cannot be read as UTF-8 text.
	ErrUnreadable = errors.New("report file unreadable")
	// ErrUnsafePath is returned for file names that would escape the reports directory.
	ErrUnsafePath = errors.New("report file path escapes reports directory")
)

// Reader loads report documents from the reports directory
type Reader interface {
	Read(ctx context.Context, report domain.Report) (string, error)
	Check(ctx context.Context, reports []domain.Report) []string
}

type fileReader struct {
	dir string
}

func NewReader(dir string) Reader {
	return &fileReader{dir: dir}
}

// ValidateFile reports whether file is a relative name that stays inside the
// reports directory once joined to it.
func ValidateFile(file string) error {
	if file == "" || filepath.IsAbs(file) || !filepath.IsLocal(file) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, file)
	}
	return nil
}

// Resolve joins file onto dir after validating it.
func Resolve(dir, file string) (string, error) {
	if err := ValidateFile(file); err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

func (fr *fileReader) Read(ctx context.Context, report domain.Report) (string, error) {
	logger := zerolog.Ctx(ctx)

	path, err := Resolve(fr.dir, report.File)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error().Str("path", path).Msg("report file not found")
			return "", fmt.Errorf("%w: %s", ErrNotFound, report.File)
		}
		logger.Error().Err(err).Str("report", report.ID).Msg("failed to read report")
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadable, report.File, err)
	}

	if !utf8.Valid(data) {
		logger.Error().Str("report", report.ID).Msg("report file is not valid UTF-8")
		return "", fmt.Errorf("%w: %s: invalid UTF-8", ErrUnreadable, report.File)
	}

	return string(data), nil
}

// Check returns the backing files of reports that are not present on disk.
func (fr *fileReader) Check(_ context.Context, reports []domain.Report) []string {
	var missing []string
	for _, r := range reports {
		path, err := Resolve(fr.dir, r.File)
		if err != nil {
			missing = append(missing, r.File)
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, r.File)
		}
	}
	return missing
}
