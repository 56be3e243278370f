// Package storage handles beneficiary photo uploads to S3.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type PhotoStorage struct {
	client *s3.Client
	bucket string
	region string
}

func NewPhotoStorage(ctx context.Context, bucket, region string) (*PhotoStorage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &PhotoStorage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
	}, nil
}

// UploadPhoto stores the file under key and returns the key on success.
func (p *PhotoStorage) UploadPhoto(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return key, nil
}

func (p *PhotoStorage) DeletePhoto(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	return nil
}

// URL returns the public object URL for a stored key.
func (p *PhotoStorage) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}
