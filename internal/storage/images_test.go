package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

func TestPresignUploadAgainstLocalEndpoint(t *testing.T) {
	p, err := NewImagePresigner(context.Background(), Config{
		Bucket:    "product-images",
		Region:    "eu-central-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Expires:   10 * time.Minute,
	})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }

	up, err := p.PresignUpload(context.Background(), "seller-1", "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "products/seller-1/2025/03/"), up.Key)
	assert.True(t, strings.HasSuffix(up.Key, ".png"), up.Key)
	assert.Equal(t, 600, up.ExpiresIn)

	u, err := url.Parse(up.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/product-images/"+up.Key, u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPresignUploadRejectsUnsupportedType(t *testing.T) {
	p := &ImagePresigner{client: failingPresigner{}, bucket: "b", expires: time.Minute, now: time.Now}
	_, err := p.PresignUpload(context.Background(), "seller-1", "application/pdf")
	assert.Equal(t, appErr.CodeInvalid, appErr.CodeOf(err))
}

func TestPresignUploadWrapsClientError(t *testing.T) {
	p := &ImagePresigner{client: failingPresigner{}, bucket: "b", expires: time.Minute, now: time.Now}
	_, err := p.PresignUpload(context.Background(), "seller-1", "image/jpeg")
	assert.Equal(t, appErr.CodeInternal, appErr.CodeOf(err))
}

func TestNewImagePresignerConfigError(t *testing.T) {
	orig := loadAWSConfig
	t.Cleanup(func() { loadAWSConfig = orig })
	loadAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewImagePresigner(context.Background(), Config{Bucket: "b", Region: "r"})
	require.Error(t, err)
}

type failingPresigner struct{}

func (failingPresigner) PresignPutObject(context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return nil, errors.New("presign failed")
}
