package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ship-swift-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultPresignTTL = 5 * time.Minute

// proofContentTypes maps accepted image types to the object key extension
var proofContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/heic": ".heic",
	"image/webp": ".webp",
}

// Presigner is the part of the S3 presign client used for uploads
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// UploadConfig configures the proof of delivery bucket
type UploadConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse represents the response with pre-signed URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ObjectURL string `json:"object_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// UploadService hands out pre-signed URLs for proof of delivery images
type UploadService struct {
	activeJobs ActiveJobQueries
	presigner  Presigner
	cfg        UploadConfig
}

// NewUploadService creates a new upload service backed by S3
func NewUploadService(ctx context.Context, activeJobs ActiveJobQueries, cfg UploadConfig) (*UploadService, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewUploadServiceWithPresigner(activeJobs, s3.NewPresignClient(client), cfg), nil
}

// NewUploadServiceWithPresigner creates an upload service on top of any presigner
func NewUploadServiceWithPresigner(activeJobs ActiveJobQueries, presigner Presigner, cfg UploadConfig) *UploadService {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = defaultPresignTTL
	}
	return &UploadService{
		activeJobs: activeJobs,
		presigner:  presigner,
		cfg:        cfg,
	}
}

// PresignProofUpload generates a pre-signed PUT for the proof image of an
// active job. Only the assigned driver may upload, and only before delivery.
func (s *UploadService) PresignProofUpload(ctx context.Context, driverID, activeJobID string, req UploadRequest) (*UploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := proofContentTypes[contentType]
	if !ok {
		return nil, invalid("content_type", "must be an image (jpeg, png, heic or webp)")
	}
	fe := strings.ToLower(filepath.Ext(req.Filename))
	if fe == ".jpeg" {
		fe = ".jpg"
	}
	if fe != "" && fe != ext {
		return nil, invalid("filename", "extension does not match content_type")
	}

	aj, err := s.activeJobs.GetActiveJob(ctx, activeJobID)
	if err != nil {
		return nil, storeErr(err)
	}
	if aj.DriverID != driverID {
		return nil, fmt.Errorf("%w: not the assigned driver", ErrForbidden)
	}
	if aj.JobStatus != models.ActiveJobCollected {
		return nil, fmt.Errorf("%w: parcel must be collected before uploading proof", ErrConflict)
	}

	key := ProofKey(activeJobID, uuid.New().String(), ext)
	presigned, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"active_job_id": activeJobID,
			"driver_id":     driverID,
		},
	}, func(o *s3.PresignOptions) {
		o.Expires = s.cfg.PresignTTL
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: presigned.URL,
		ObjectURL: s.objectURL(key),
		Key:       key,
		ExpiresIn: int(s.cfg.PresignTTL.Seconds()),
	}, nil
}

// ProofKey builds the object key of a proof of delivery image
func ProofKey(activeJobID, objectID, ext string) string {
	return fmt.Sprintf("deliveries/%s/%s%s", activeJobID, objectID, ext)
}

func (s *UploadService) objectURL(key string) string {
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
