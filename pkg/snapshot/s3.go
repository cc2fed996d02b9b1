package snapshot

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vrt/internal/errors"
)

// PutObjectAPI is the part of *s3.Client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads snapshots to an S3 bucket.
//
// Example usage:
//
//	client := snapshot.NewS3Client("eu-west-1")
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/")
//	key, err := store.Put(ctx, "home", html)
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Store creates a store writing to bucket under prefix.
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Put uploads html with its content type and hash as object metadata.
func (s *S3Store) Put(ctx context.Context, name string, html []byte) (string, error) {
	name, err := CleanName(name)
	if err != nil {
		return "", err
	}
	key := Key(s.prefix, name, html)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(html),
		ContentType: aws.String(ContentType),
		Metadata: map[string]string{
			"snapshot-name": name,
			"xxhash":        Hash(html),
			"created-at":    s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", errors.New("E140").
			WithDetailf("upload to s3://%s/%s failed", s.bucket, key).
			Wrap(err)
	}
	return key, nil
}

// NewS3Client builds an S3 client for region using credentials from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
// AWS_ENDPOINT_URL, when set, points the client at an S3 compatible server.
func NewS3Client(region string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(envCredentials()),
	}, func(o *s3.Options) {
		if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New("E121").
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for S3 snapshots")
		}
		return creds, nil
	})
}
