package documents

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// Presigner issues short-lived S3 upload URLs so clients can push document
// bytes directly to the bucket, then register them via the from-s3 endpoint.
type Presigner struct {
	Client *s3.PresignClient
	Bucket string
	Prefix string
}

// CreateUploadURL returns a presigned PUT URL and the object key it targets.
func (p *Presigner) CreateUploadURL(ctx context.Context, userId, fileName, contentType string) (string, string, error) {
	if p == nil || p.Client == nil {
		return "", "", fmt.Errorf("presign client not configured")
	}

	ext := path.Ext(fileName)
	key := p.Prefix + userId + "/" + uuid.NewString() + strings.ToLower(ext)

	out, err := p.Client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign put object: %w", err)
	}
	return out.URL, key, nil
}
