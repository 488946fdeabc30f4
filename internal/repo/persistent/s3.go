package persistent

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/andreyxaxa/Image-Moderation/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type MediaRepo struct {
	*s3client.S3Client
	bucket    string
	publicURL string
}

// NewMediaRepo stores objects in bucket. Object URLs are built from
// publicURL, or from the S3 endpoint in path style when publicURL is empty.
func NewMediaRepo(s3c *s3client.S3Client, bucket, endpoint, publicURL string) *MediaRepo {
	base := strings.TrimRight(publicURL, "/")
	if base == "" {
		base = strings.TrimRight(endpoint, "/") + "/" + bucket
	}

	return &MediaRepo{s3c, bucket, base}
}

func (r *MediaRepo) Store(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("MediaRepo - Store - r.Client.PutObject: %w", err)
	}

	return ObjectURL(r.publicURL, key), nil
}

func (r *MediaRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("MediaRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}

// ObjectURL joins base and key, escaping each key segment.
func ObjectURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
