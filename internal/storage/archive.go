package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	pdfContentType = "application/pdf"
	uploadTimeout  = 30 * time.Second
)

var ErrBucketRequired = errors.New("s3 bucket is required")

// Archiver guarda una copia de los PDFs generados.
type Archiver interface {
	Archive(ctx context.Context, filename string, data []byte) (string, error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Archiver sube los PDFs bajo pdfs/YYYY/MM/DD/<uuid>-<filename>.
type S3Archiver struct {
	client putObjectAPI
	bucket string
	now    func() time.Time
	newID  func() string
}

// NewS3Archiver usa credenciales estaticas si vienen configuradas y la cadena
// por defecto del SDK si no. Un endpoint propio (MinIO) activa path-style.
func NewS3Archiver(ctx context.Context, opts S3Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, ErrBucketRequired
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Archiver(client, opts.Bucket), nil
}

func newS3Archiver(client putObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// Archive devuelve la key del objeto subido.
func (a *S3Archiver) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	key := a.objectKey(filename)
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(pdfContentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

func (a *S3Archiver) objectKey(filename string) string {
	d := a.now()
	return fmt.Sprintf("pdfs/%04d/%02d/%02d/%s-%s", d.Year(), d.Month(), d.Day(), a.newID(), filename)
}
