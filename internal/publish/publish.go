// Package publish uploads a build to S3 or an S3-compatible store.
//
// The bundle is uploaded before the manifest, so a reader that finds a new
// manifest can always fetch the bundle it names.
//
//	client := publish.NewClient(cfg.Publish)
//	p, err := publish.New(client, cfg.Publish, logger)
//	res, err := p.Publish(ctx, cfg.OutputPath())
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/wcdk/internal/build"
	"github.com/vango-dev/wcdk/internal/config"
	"github.com/vango-dev/wcdk/internal/errors"
)

// Uploader is the subset of *s3.Client used to publish.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object is one uploaded file.
type Object struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"etag,omitempty"`
}

// Result lists the uploaded objects in upload order.
type Result struct {
	Bucket  string   `json:"bucket"`
	Objects []Object `json:"objects"`
}

// Publisher uploads build output under a key prefix.
type Publisher struct {
	client Uploader
	bucket string
	prefix string
	logger *slog.Logger
}

// artifacts are uploaded in this order.
var artifacts = []struct {
	name        string
	contentType string
}{
	{build.BundleFile, "application/cbor"},
	{build.ManifestFile, "application/json"},
}

// New creates a Publisher. A nil logger uses slog.Default().
func New(client Uploader, cfg config.PublishConfig, logger *slog.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("W051")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// NewClient creates an S3 client for cfg. Credentials come from the standard
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN variables.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}

// Key returns the object key for a file name.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads the bundle and manifest found in dir.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	result := &Result{Bucket: p.bucket}
	for _, a := range artifacts {
		file := filepath.Join(dir, a.name)
		data, err := os.ReadFile(file)
		if err != nil {
			return result, errors.New("W050").
				WithLocation(file, 0, 0).
				WithSuggestion("Run wcdk compile first.").
				Wrap(err)
		}

		key := p.Key(a.name)
		out, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(p.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(a.contentType),
			CacheControl:  aws.String("no-cache"),
			Metadata: map[string]string{
				"wcdk-bundle-version": strconv.Itoa(build.BundleVersion),
			},
		})
		if err != nil {
			return result, errors.New("W050").
				WithDetail(fmt.Sprintf("s3://%s/%s", p.bucket, key)).
				Wrap(err)
		}

		obj := Object{Key: key, Size: int64(len(data))}
		if out != nil && out.ETag != nil {
			obj.ETag = *out.ETag
		}
		result.Objects = append(result.Objects, obj)
		p.logger.Info("uploaded", "bucket", p.bucket, "key", key, "bytes", obj.Size)
	}
	return result, nil
}
