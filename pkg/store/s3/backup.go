package s3

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 API used for backups.
type PutObjectAPI interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupStore uploads backed-up report files to an S3 bucket under a key prefix
type BackupStore struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewBackupStore loads the default AWS configuration chain and returns a store for bucket.
func NewBackupStore(ctx context.Context, bucket, prefix string) (*BackupStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewBackupStoreWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewBackupStoreWithClient(client PutObjectAPI, bucket, prefix string) *BackupStore {
	return &BackupStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Upload stores the local file at src under prefix/key.
func (b *BackupStore) Upload(ctx context.Context, key, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close()

	objectKey := path.Join(b.prefix, key)
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		Body:        f,
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", b.bucket, objectKey, err)
	}
	return nil
}

// Location describes where uploads land, for log output.
func (b *BackupStore) Location() string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, b.prefix)
}
