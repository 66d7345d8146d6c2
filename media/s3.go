package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"foundersnexus/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Region        string
	Bucket        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Uploader stores pitch decks in an S3 compatible bucket. It cannot render
// previews, so results carry no thumbnail.
type S3Uploader struct {
	client  putObjectAPI
	bucket  string
	baseURL string
	log     logging.Logger
	now     func() time.Time
}

func NewS3Uploader(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Uploader{client: client, bucket: cfg.Bucket, baseURL: strings.TrimSuffix(base, "/"), log: log, now: time.Now}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, f File) (Result, error) {
	fileType, err := FileType(f)
	if err != nil {
		return Result{}, err
	}
	data, err := io.ReadAll(io.LimitReader(f.Body, MaxPitchDeckSize+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Result{}, errors.New("file is empty")
	}

	key := u.storageKey(fileType)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return Result{}, fmt.Errorf("put object %s: %w", key, err)
	}

	url := u.baseURL + "/" + key
	u.log.Info(ctx, "pitch deck uploaded", "file", f.Name, "key", key)
	return Result{URL: url, ViewURL: url, Pages: 1}, nil
}

func (u *S3Uploader) storageKey(fileType string) string {
	d := u.now()
	return fmt.Sprintf("pitch_decks/%d/%02d/%02d/%s.%s", d.Year(), d.Month(), d.Day(), uuid.New(), fileType)
}
