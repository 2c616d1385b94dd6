package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"quadralivre/internal/config"
)

// PhotoUploader stores one venue photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error)
}

type S3PhotoUploader struct {
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

func NewS3PhotoUploader(cfg *config.S3Config) *S3PhotoUploader {
	return &S3PhotoUploader{
		uploader:      manager.NewUploader(cfg.Client),
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}
}

func (u *S3PhotoUploader) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	key := filepath.Join("locais", uuid.NewString()+filepath.Ext(header.Filename))

	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(header.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("upload photo %s: %w", header.Filename, err)
	}

	return strings.TrimRight(u.publicBaseURL, "/") + "/" + key, nil
}
