// Package objectstore issues presigned S3 URLs for uploads and downloads.
// The workflow only ever stores the resulting reference URL, never bytes.
package objectstore

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/modelmagic/modelmagic/pkg/config"
)

type Client struct {
	svc           *s3.S3
	bucket        string
	presignExpiry time.Duration
}

func NewClient(cfg *config.Config) (*Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Client{
		svc:           s3.New(sess),
		bucket:        cfg.S3.Bucket,
		presignExpiry: time.Duration(cfg.S3.PresignExpiryMinute) * time.Minute,
	}, nil
}

// BuildObjectKey namespaces uploads per project with a random prefix so
// re-uploads of the same filename never collide.
func BuildObjectKey(projectID uint, filename string) string {
	return fmt.Sprintf("projects/%d/%s/%s", projectID, uuid.NewString(), filename)
}

func (c *Client) PresignUpload(key, contentType string) (string, error) {
	req, _ := c.svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	url, err := req.Presign(c.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}
	return url, nil
}

func (c *Client) PresignDownload(key string) (string, error) {
	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(c.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return url, nil
}

func (c *Client) DeleteObject(key string) error {
	_, err := c.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
