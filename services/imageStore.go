package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MaxImageSize is the largest photo accepted for an issue.
const MaxImageSize = 1 << 20

// UploadResult identifies a stored image.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ImageStore persists an uploaded image and returns where it can be read.
type ImageStore interface {
	Upload(ctx context.Context, folder, ext, contentType string, data []byte) (*UploadResult, error)
}

// ErrUploadsDisabled is returned by DisabledImageStore.
var ErrUploadsDisabled = errors.New("image uploads are not configured")

// DisabledImageStore rejects every upload. It stands in when no bucket is
// configured.
type DisabledImageStore struct{}

func (DisabledImageStore) Upload(context.Context, string, string, string, []byte) (*UploadResult, error) {
	return nil, ErrUploadsDisabled
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore writes images to an S3 bucket under "<folder>/<uuid><ext>".
type S3ImageStore struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3ImageStore loads the default AWS credential chain for region. When
// baseURL is empty objects are addressed through the bucket's virtual-host URL.
func NewS3ImageStore(ctx context.Context, bucket, region, baseURL string) (*S3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3ImageStore{client: s3.NewFromConfig(cfg), bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

var folderPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// CleanFolder reduces a client supplied folder name to a safe key prefix.
func CleanFolder(folder string) string {
	folder = folderPattern.ReplaceAllString(strings.TrimSpace(folder), "-")
	folder = strings.Trim(folder, "-")
	if folder == "" {
		return "issues"
	}
	return folder
}

func (s *S3ImageStore) Upload(ctx context.Context, folder, ext, contentType string, data []byte) (*UploadResult, error) {
	key := path.Join(CleanFolder(folder), uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{URL: s.baseURL + "/" + key, PublicID: key}, nil
}
