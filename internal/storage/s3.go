package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"coursehub/internal/domain"
	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Object metadata keys. S3 returns them lowercased.
const (
	metaCommunity  = "community"
	metaUploadedBy = "uploaded-by"
)

// S3Config configures an S3-compatible bucket (AWS, MinIO, DigitalOcean Spaces)
type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string // Empty = AWS default endpoint resolution
	AccessKey  string // Empty = default credential chain
	SecretKey  string
	PublicPath string
	TempDir    string // Spool directory; empty = os.TempDir()
}

// S3 stores objects in a bucket. Objects are served back through Handler, so
// the bucket itself can stay private.
type S3 struct {
	client     *s3.Client
	bucket     string
	publicPath string
	tempDir    string
	logger     *slog.Logger
}

// NewS3 creates the store
func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{URL: cfg.Endpoint}, nil
		})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (MinIO, Spaces) generally need path-style addressing
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &S3{
		client:     client,
		bucket:     cfg.Bucket,
		publicPath: cfg.PublicPath,
		tempDir:    cfg.TempDir,
		logger:     logger,
	}, nil
}

// Name returns the store name for logging
func (s *S3) Name() string { return "s3" }

// Save spools r to a local temp file first, so a body that fails mid-stream
// (including a size overrun) never becomes an object, then puts it.
func (s *S3) Save(ctx context.Context, name string, r io.Reader, info courseSvc.ObjectInfo) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	spool, err := os.CreateTemp(s.tempDir, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	n, err := io.Copy(spool, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		return 0, err
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind spool file: %w", err)
	}

	put := func() error {
		if _, err := spool.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(name),
			Body:        spool,
			ContentType: aws.String(info.ContentType),
			Metadata:    ownerMetadata(info.Owner),
		})
		return err
	}

	err = put()
	if err != nil && apiErrorCode(err) == "NoSuchBucket" {
		s.logger.Warn("upload bucket missing, creating", "bucket", s.bucket)
		if _, cerr := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); cerr != nil {
			return 0, fmt.Errorf("create bucket: %w", cerr)
		}
		err = put()
	}
	if err != nil {
		return 0, fmt.Errorf("put object: %w", err)
	}

	return n, nil
}

// Stat reads the object's content type and owner metadata
func (s *S3) Stat(ctx context.Context, name string) (*courseSvc.ObjectInfo, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("file %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("head object: %w", err)
	}

	info := &courseSvc.ObjectInfo{
		Owner: courseModels.FileOwner{
			CommunityID: out.Metadata[metaCommunity],
			UploadedBy:  out.Metadata[metaUploadedBy],
		},
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	return info, nil
}

// Delete removes a stored object
func (s *S3) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	// DeleteObject succeeds on missing keys, so check first to report 404s
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("file %s: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("head object: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URL returns the public locator for name
func (s *S3) URL(name string) string {
	return s.publicPath + name
}

// Handler streams objects from the bucket. Expects the public prefix already stripped.
func (s *S3) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if validName(name) != nil {
			http.NotFound(w, r)
			return
		}

		out, err := s.client.GetObject(r.Context(), &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(name),
		})
		if err != nil {
			if isNotFound(err) {
				http.NotFound(w, r)
				return
			}
			s.logger.Error("get object failed", "key", name, "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		defer out.Body.Close()

		if out.ContentType != nil {
			w.Header().Set("Content-Type", *out.ContentType)
		}
		if out.ETag != nil {
			w.Header().Set("ETag", *out.ETag)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if _, err := io.Copy(w, out.Body); err != nil {
			s.logger.Warn("stream object interrupted", "key", name, "error", err)
		}
	})
}

func ownerMetadata(owner courseModels.FileOwner) map[string]string {
	meta := map[string]string{}
	if owner.CommunityID != "" {
		meta[metaCommunity] = owner.CommunityID
	}
	if owner.UploadedBy != "" {
		meta[metaUploadedBy] = owner.UploadedBy
	}
	return meta
}

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func isNotFound(err error) bool {
	switch apiErrorCode(err) {
	case "NotFound", "NoSuchKey":
		return true
	}
	return false
}
