package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/princinho/storecatalog/config"
)

// ObjectStore holds uploaded product media and serves it from public URLs.
type ObjectStore interface {
	// Upload writes body under objectName and returns its public URL.
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	// Delete removes the named objects, continuing past failures. It returns
	// the first error.
	Delete(ctx context.Context, objectNames ...string) error
	// ObjectName maps a public URL produced by Upload back to its object name.
	ObjectName(rawURL string) (string, error)
	Close() error
}

// NewObjectStore builds the store selected by cfg.Driver.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.CredentialsFile)
	case config.StorageR2:
		return NewR2Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ProductObjectName is the key of a new product image. Names never collide
// so an upload never overwrites media of another product.
func ProductObjectName(productSlug, filename string) string {
	if productSlug == "" {
		productSlug = "unnamed"
	}
	return fmt.Sprintf("products/%s/%d-%s%s", productSlug, time.Now().UTC().Unix(), uuid.New().String(), extension(filename))
}

// UploadObjectName is the key of a standalone upload (review images, videos).
func UploadObjectName(filename string) string {
	return fmt.Sprintf("uploads/%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.New().String(), extension(filename))
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return ext
}

// ContentType prefers the declared type and falls back to the file extension.
func ContentType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if ct := mime.TypeByExtension(extension(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DeleteByURLs removes the objects behind urls. URLs that do not belong to the
// store are skipped. Failures are logged and never returned: the database
// already stopped referencing the objects.
func DeleteByURLs(ctx context.Context, store ObjectStore, urls []string, log *zap.Logger) {
	names := make([]string, 0, len(urls))
	for _, u := range urls {
		name, err := store.ObjectName(u)
		if err != nil {
			log.Warn("skip foreign image url", zap.String("url", u), zap.Error(err))
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return
	}
	if err := store.Delete(ctx, names...); err != nil {
		log.Error("delete stored images", zap.Strings("objects", names), zap.Error(err))
	}
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore opens a Cloud Storage client. A blank credentials path uses
// the ambient application default credentials.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (g *GCSStore) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName), nil
}

func (g *GCSStore) Delete(ctx context.Context, objectNames ...string) error {
	var firstErr error
	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		if err := g.client.Bucket(g.bucket).Object(obj).Delete(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}
	return firstErr
}

func (g *GCSStore) ObjectName(rawURL string) (string, error) {
	return gcsObjectName(g.bucket, rawURL)
}

func (g *GCSStore) Close() error {
	return g.client.Close()
}

// gcsObjectName accepts both storage.googleapis.com/<bucket>/<object> and
// <bucket>.storage.googleapis.com/<object>.
func gcsObjectName(bucket, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimPrefix(u.Path, "/")

	if host == "storage.googleapis.com" {
		prefix := bucket + "/"
		if !strings.HasPrefix(path, prefix) || path == prefix {
			return "", fmt.Errorf("url bucket mismatch")
		}
		return strings.TrimPrefix(path, prefix), nil
	}
	if host == strings.ToLower(bucket)+".storage.googleapis.com" {
		if path == "" {
			return "", fmt.Errorf("missing object path")
		}
		return path, nil
	}
	return "", fmt.Errorf("not a gcs public url")
}

// R2Store keeps objects in a Cloudflare R2 bucket through its S3 API.
type R2Store struct {
	s3     *s3.Client
	bucket string
	domain string
}

func NewR2Store(ctx context.Context, cfg config.StorageConfig) (*R2Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true // required for R2
	})
	return &R2Store{
		s3:     client,
		bucket: cfg.R2Bucket,
		domain: strings.TrimRight(cfg.R2PublicDomain, "/"),
	}, nil
}

func (r *R2Store) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	_, err := r.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(objectName),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return r.publicURL(objectName), nil
}

func (r *R2Store) Delete(ctx context.Context, objectNames ...string) error {
	var firstErr error
	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		_, err := r.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(obj),
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}
	return firstErr
}

func (r *R2Store) ObjectName(raw string) (string, error) {
	return r2ObjectName(r.domain, r.bucket, raw)
}

func (r *R2Store) Close() error { return nil }

func (r *R2Store) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", r.domain, r.bucket, objectName)
}

func r2ObjectName(domain, bucket, raw string) (string, error) {
	prefix := domain + "/" + bucket + "/"
	if domain == "" || !strings.HasPrefix(raw, prefix) || raw == prefix {
		return "", fmt.Errorf("not a recognised R2 public url")
	}
	return strings.TrimPrefix(raw, prefix), nil
}
