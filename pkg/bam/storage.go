package bam

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3URI is a parsed s3://bucket/key location.
type S3URI struct {
	Bucket string
	Key    string
}

func (u *S3URI) String() string {
	return fmt.Sprintf("s3://%s/%s", u.Bucket, u.Key)
}

// IsS3 reports whether path names an S3 object.
func IsS3(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ParseS3URI parses an S3 URI like s3://bucket/path/to/object.bam
func ParseS3URI(uri string) (*S3URI, error) {
	if !IsS3(uri) {
		return nil, fmt.Errorf("invalid S3 URI: must start with s3://")
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "s3://"), "/", 2)
	if parts[0] == "" {
		return nil, fmt.Errorf("invalid S3 URI: missing bucket name")
	}
	if len(parts) < 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return nil, fmt.Errorf("invalid S3 URI: missing object key")
	}

	return &S3URI{Bucket: parts[0], Key: parts[1]}, nil
}

// openStorage returns a sequential stream over path. "-" reads stdin.
func openStorage(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case path == "-":
		return io.NopCloser(os.Stdin), nil
	case IsS3(path):
		return openS3(ctx, path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

// openS3 streams the object body rather than downloading it whole, so
// records can be decoded while the transfer is still running.
func openS3(ctx context.Context, path string) (io.ReadCloser, error) {
	uri, err := ParseS3URI(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(uri.Bucket),
		Key:    aws.String(uri.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", uri, err)
	}
	return out.Body, nil
}
