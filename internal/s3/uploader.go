// internal/s3/uploader.go
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"apiary-api-server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectAPI is the subset of the S3 client the uploader calls.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Uploader struct {
	client           objectAPI
	Bucket           string
	Region           string
	CloudFrontDomain string
	Endpoint         string
	UsePathStyle     bool
}

func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newUploader(client, cfg), nil
}

func newUploader(client objectAPI, cfg config.S3Config) *Uploader {
	return &Uploader{
		client:           client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
		Endpoint:         strings.TrimRight(cfg.Endpoint, "/"),
		UsePathStyle:     cfg.UsePathStyle,
	}
}

// PhotoKey names the object for a photo of the given record, e.g. colmenas/<id>_<unixMillis>.jpg.
func PhotoKey(collection, id string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s_%d.%s", collection, id, at.UnixMilli(), strings.TrimPrefix(ext, "."))
}

// Upload stores body under objectKey and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", objectKey, err)
	}
	return u.URL(objectKey), nil
}

func (u *Uploader) Delete(ctx context.Context, objectKey string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", objectKey, err)
	}
	return nil
}

// URL builds the public address of objectKey. CloudFront wins over a custom
// endpoint, which wins over the regional S3 host.
func (u *Uploader) URL(objectKey string) string {
	switch {
	case u.CloudFrontDomain != "":
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	case u.Endpoint != "" && u.UsePathStyle:
		return fmt.Sprintf("%s/%s/%s", u.Endpoint, u.Bucket, objectKey)
	case u.Endpoint != "":
		if ep, err := url.Parse(u.Endpoint); err == nil && ep.Host != "" {
			return fmt.Sprintf("%s://%s.%s/%s", ep.Scheme, u.Bucket, ep.Host, objectKey)
		}
		return fmt.Sprintf("%s/%s/%s", u.Endpoint, u.Bucket, objectKey)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
	}
}

// KeyFromURL recovers the object key from a URL produced by URL. It returns ""
// for URLs that do not point into this bucket.
func (u *Uploader) KeyFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	prefix := u.URL("")
	if !strings.HasPrefix(rawURL, prefix) {
		return ""
	}
	return strings.TrimPrefix(rawURL, prefix)
}
