package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"apiary-api-server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	puts    map[string]string
	deletes []string
	err     error
}

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestPhotoKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "colmenas/abc_1700000000123.jpg", PhotoKey("colmenas", "abc", at, ".jpg"))
	assert.Equal(t, "colmenas/abc_1700000000123.jpg", PhotoKey("colmenas", "abc", at, "jpg"))
}

func TestURLVariants(t *testing.T) {
	api := &fakeAPI{}
	regional := newUploader(api, config.S3Config{Bucket: "fotos", Region: "sa-east-1"})
	cdn := newUploader(api, config.S3Config{Bucket: "fotos", CloudFrontDomain: "cdn.example.com"})
	minio := newUploader(api, config.S3Config{Bucket: "fotos", Endpoint: "http://localhost:9000/", UsePathStyle: true})
	vhost := newUploader(api, config.S3Config{Bucket: "fotos", Endpoint: "https://objects.example.com"})

	assert.Equal(t, "https://fotos.s3.sa-east-1.amazonaws.com/colmenas/a.jpg", regional.URL("colmenas/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/colmenas/a.jpg", cdn.URL("colmenas/a.jpg"))
	assert.Equal(t, "http://localhost:9000/fotos/colmenas/a.jpg", minio.URL("colmenas/a.jpg"))
	assert.Equal(t, "https://fotos.objects.example.com/colmenas/a.jpg", vhost.URL("colmenas/a.jpg"))

	for _, u := range []*Uploader{regional, cdn, minio, vhost} {
		assert.Equal(t, "colmenas/a.jpg", u.KeyFromURL(u.URL("colmenas/a.jpg")))
		assert.Empty(t, u.KeyFromURL("https://elsewhere.example.com/colmenas/a.jpg"))
		assert.Empty(t, u.KeyFromURL(""))
	}
}

func TestUploadAndDelete(t *testing.T) {
	api := &fakeAPI{}
	u := newUploader(api, config.S3Config{Bucket: "fotos", Region: "us-east-1"})

	url, err := u.Upload(context.Background(), "colmenas/x_1.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://fotos.s3.us-east-1.amazonaws.com/colmenas/x_1.jpg", url)
	assert.Equal(t, "jpeg-bytes", api.puts["colmenas/x_1.jpg"])

	require.NoError(t, u.Delete(context.Background(), "colmenas/x_1.jpg"))
	assert.Equal(t, []string{"colmenas/x_1.jpg"}, api.deletes)
}

func TestUploadError(t *testing.T) {
	cause := errors.New("access denied")
	u := newUploader(&fakeAPI{err: cause}, config.S3Config{Bucket: "fotos"})

	_, err := u.Upload(context.Background(), "k", strings.NewReader(""), "image/jpeg")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, u.Delete(context.Background(), "k"), cause)
}
