package publish

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
)

type put struct {
	key         string
	contentType string
	body        string
}

type fakeUploader struct {
	puts []put
	fail string
}

func (f *fakeUploader) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, stderrors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, put{key: key, contentType: aws.ToString(in.ContentType), body: string(body)})
	return &s3.PutObjectOutput{ETag: aws.String(`"etag-` + key + `"`)}, nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func outputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, build.BundleFile), []byte("cbor"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, build.ManifestFile), []byte(`{"version":1}`), 0o644))
	return dir
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(&fakeUploader{}, config.PublishConfig{}, nil)
	require.Error(t, err)

	var d *errors.Diagnostic
	require.True(t, stderrors.As(err, &d))
	assert.Equal(t, "W051", d.Code)
}

func TestPublish(t *testing.T) {
	up := &fakeUploader{}
	p, err := New(up, config.PublishConfig{Bucket: "cdn", Prefix: "widgets/v1"}, quiet())
	require.NoError(t, err)

	res, err := p.Publish(context.Background(), outputDir(t))
	require.NoError(t, err)

	require.Len(t, up.puts, 2)
	assert.Equal(t, "widgets/v1/bundle.cbor", up.puts[0].key, "bundle goes first")
	assert.Equal(t, "application/cbor", up.puts[0].contentType)
	assert.Equal(t, "cbor", up.puts[0].body)
	assert.Equal(t, "widgets/v1/manifest.json", up.puts[1].key)
	assert.Equal(t, "application/json", up.puts[1].contentType)

	assert.Equal(t, "cdn", res.Bucket)
	require.Len(t, res.Objects, 2)
	assert.Equal(t, int64(4), res.Objects[0].Size)
	assert.Equal(t, `"etag-widgets/v1/bundle.cbor"`, res.Objects[0].ETag)
}

func TestPublishWithoutPrefix(t *testing.T) {
	p, err := New(&fakeUploader{}, config.PublishConfig{Bucket: "cdn"}, quiet())
	require.NoError(t, err)
	assert.Equal(t, "bundle.cbor", p.Key("bundle.cbor"))
}

func TestPublishMissingOutput(t *testing.T) {
	up := &fakeUploader{}
	p, err := New(up, config.PublishConfig{Bucket: "cdn"}, quiet())
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
	assert.Empty(t, up.puts)
}

func TestPublishUploadFailureStopsBeforeManifest(t *testing.T) {
	up := &fakeUploader{fail: "bundle.cbor"}
	p, err := New(up, config.PublishConfig{Bucket: "cdn"}, quiet())
	require.NoError(t, err)

	res, err := p.Publish(context.Background(), outputDir(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Empty(t, res.Objects)
	assert.Empty(t, up.puts, "manifest must not be uploaded after a failed bundle")
}

func TestNewClient(t *testing.T) {
	c := NewClient(config.PublishConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true})
	opts := c.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	_, err := envCredentials(context.Background())
	assert.Error(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
	assert.Equal(t, "environment", creds.Source)
}
