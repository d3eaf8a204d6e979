package s3

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	mock.Mock
	bodies map[string]string
}

func (m *mockS3Client) PutObject(ctx context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(aws.ToString(input.Bucket), aws.ToString(input.Key))
	if input.Body != nil {
		data, _ := io.ReadAll(input.Body)
		if m.bodies == nil {
			m.bodies = make(map[string]string)
		}
		m.bodies[aws.ToString(input.Key)] = string(data)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestBackupStore_Upload(t *testing.T) {
	src := filepath.Join(t.TempDir(), "en-short.html")
	require.NoError(t, os.WriteFile(src, []byte("Hello"), 0o644))

	client := new(mockS3Client)
	client.On("PutObject", "backups", "weekly/reports_20250901_120000/en-short.html").
		Return(&s3.PutObjectOutput{}, nil)

	store := NewBackupStoreWithClient(client, "backups", "weekly")
	err := store.Upload(context.Background(), "reports_20250901_120000/en-short.html", src)

	require.NoError(t, err)
	assert.Equal(t, "Hello", client.bodies["weekly/reports_20250901_120000/en-short.html"])
	assert.Equal(t, "s3://backups/weekly", store.Location())
	client.AssertExpectations(t)
}

func TestBackupStore_UploadErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		client := new(mockS3Client)
		store := NewBackupStoreWithClient(client, "backups", "")

		err := store.Upload(context.Background(), "x.html", filepath.Join(t.TempDir(), "x.html"))
		assert.Error(t, err)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	})

	t.Run("api failure", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "x.html")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

		client := new(mockS3Client)
		client.On("PutObject", "backups", "x.html").Return(nil, errors.New("access denied"))
		store := NewBackupStoreWithClient(client, "backups", "")

		err := store.Upload(context.Background(), "x.html", src)
		assert.ErrorContains(t, err, "access denied")
	})
}
