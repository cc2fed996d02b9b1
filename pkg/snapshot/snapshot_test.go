package snapshot

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vrterrors "github.com/vango-dev/vrt/internal/errors"
)

func TestKey(t *testing.T) {
	html := []byte("<div>hi</div>")
	hash := Hash(html)

	assert.Len(t, hash, 16)
	assert.Equal(t, hash, Hash([]byte("<div>hi</div>")))
	assert.NotEqual(t, hash, Hash([]byte("<div>ho</div>")))

	assert.Equal(t, "home-"+hash+".html", Key("", "home", html))
	assert.Equal(t, "ci/run/home-"+hash+".html", Key("ci/run/", "home", html))
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"home", "home"},
		{" todo list ", "todo-list"},
		{"../etc/passwd", "etc-passwd"},
		{"Panel_2", "Panel_2"},
	}
	for _, tt := range tests {
		got, err := CleanName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := CleanName("///")
	var d *vrterrors.Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, "E140", d.Code)
}

func TestDiskStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "out"), "demo")
	require.NoError(t, err)

	html := []byte(`<ul><li>a</li></ul>`)
	key, err := store.Put(context.Background(), "todo", html)
	require.NoError(t, err)
	assert.Equal(t, "demo/todo-"+Hash(html)+".html", key)

	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, html, data)

	again, err := store.Put(context.Background(), "todo", html)
	require.NoError(t, err)
	assert.Equal(t, key, again)

	other, err := store.Put(context.Background(), "todo", []byte(`<ul></ul>`))
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	entries, err := os.ReadDir(filepath.Join(store.Dir(), "demo"))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestDiskStoreCancelled(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, "x", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3Store(fake, "bucket", "snaps")
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	html := []byte(`<p>snapshot</p>`)
	key, err := store.Put(context.Background(), "home page", html)
	require.NoError(t, err)

	assert.Equal(t, "snaps/home-page-"+Hash(html)+".html", key)
	assert.Equal(t, "bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, key, aws.ToString(fake.input.Key))
	assert.Equal(t, ContentType, aws.ToString(fake.input.ContentType))
	assert.Equal(t, html, fake.body)
	assert.Equal(t, map[string]string{
		"snapshot-name": "home-page",
		"xxhash":        Hash(html),
		"created-at":    "2026-01-02T03:04:05Z",
	}, fake.input.Metadata)
}

func TestS3StoreError(t *testing.T) {
	boom := errors.New("access denied")
	store := NewS3Store(&fakeS3{err: boom}, "bucket", "")

	_, err := store.Put(context.Background(), "home", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var d *vrterrors.Diagnostic
	require.True(t, errors.As(err, &d))
	assert.Equal(t, "E140", d.Code)
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials().Retrieve(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
	creds, err := envCredentials().Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)

	client := NewS3Client("eu-west-1")
	assert.Equal(t, "eu-west-1", client.Options().Region)
}
