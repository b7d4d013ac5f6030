// Package storage presigns direct-to-bucket uploads of product images.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appErr "github.com/bazaar-shop/marketplace/pkg/errors"
)

const DefaultUploadExpiry = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Expires   time.Duration
}

// Upload is a presigned PUT the client sends the image bytes to. Key is the
// value to store as the product image.
type Upload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

type putPresigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type ImagePresigner struct {
	client  putPresigner
	bucket  string
	expires time.Duration
	now     func() time.Time
}

// loadAWSConfig is replaced in tests.
var loadAWSConfig = config.LoadDefaultConfig

func NewImagePresigner(ctx context.Context, cfg Config) (*ImagePresigner, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	expires := cfg.Expires
	if expires <= 0 {
		expires = DefaultUploadExpiry
	}
	return &ImagePresigner{client: s3.NewPresignClient(client), bucket: cfg.Bucket, expires: expires, now: time.Now}, nil
}

// PresignUpload returns a presigned PUT for a new image owned by sellerID.
// contentType must be one of the supported image types.
func (p *ImagePresigner) PresignUpload(ctx context.Context, sellerID, contentType string) (*Upload, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, appErr.New(appErr.CodeInvalid, "contentType must be one of: image/jpeg image/png image/webp image/gif")
	}

	d := p.now().UTC()
	key := fmt.Sprintf("products/%s/%d/%02d/%s.%s", sellerID, d.Year(), d.Month(), uuid.NewString(), ext)

	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.expires))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "presign upload failed")
	}
	return &Upload{Key: key, UploadURL: req.URL, ExpiresIn: int(p.expires.Seconds())}, nil
}
