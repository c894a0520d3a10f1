package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"letterhead/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// StorageProvider keeps exported letters and brand assets
type StorageProvider interface {
	Put(ctx context.Context, r io.Reader, key, contentType string, size int64) (*StorageResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // reader, content type
	Delete(ctx context.Context, key string) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

// StorageResult describes a stored object
type StorageResult struct {
	Key      string
	FileSize int64
	MimeType string
	URL      string // public URL, empty for a private bucket
}

// Storage is the global storage instance
var Storage StorageProvider

// StoreBytes writes an in-memory file through the global storage provider
func StoreBytes(ctx context.Context, data []byte, key, contentType string) (*StorageResult, error) {
	if Storage == nil {
		return nil, fmt.Errorf("storage not initialized")
	}
	return Storage.Put(ctx, bytes.NewReader(data), key, contentType, int64(len(data)))
}

// ReadAll downloads a stored file into memory
func ReadAll(ctx context.Context, key string) ([]byte, string, error) {
	if Storage == nil {
		return nil, "", fmt.Errorf("storage not initialized")
	}
	rc, contentType, err := Storage.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, contentType, nil
}

// InitializeStorage picks R2 when it is fully configured and reachable, and
// the local upload directory otherwise
func InitializeStorage(cfg *config.Config) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Printf("Storage connection established (Local filesystem - path: %s)", cfg.UploadDir)
		return
	}

	r2, err := connectR2(cfg)
	if err != nil {
		log.Printf("[WARNING] %v. Falling back to local storage.", err)
		Storage = NewLocalStorage(cfg.UploadDir)
		log.Println("Storage connection established (Local filesystem - fallback)")
		return
	}
	Storage = r2
	log.Printf("Storage connection established (Cloudflare R2 - bucket: %s)", cfg.R2BucketName)
}

func connectR2(cfg *config.Config) (*R2Storage, error) {
	r2, err := NewR2Storage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize R2 storage: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r2.bucket)}); err != nil {
		return nil, fmt.Errorf("R2 bucket connection test failed: %w", err)
	}
	return r2, nil
}

// R2Storage stores objects in a Cloudflare R2 bucket through the S3 API
type R2Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2Storage builds an S3 client against the account's R2 endpoint
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

func (r *R2Storage) Put(ctx context.Context, body io.Reader, key, contentType string, size int64) (*StorageResult, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}
	return &StorageResult{Key: key, FileSize: size, MimeType: contentType, URL: r.PublicURL(key)}, nil
}

func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}
	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return out.Body, contentType, nil
}

func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// SignedURL presigns a GET for downloads from a private bucket
func (r *R2Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return req.URL, nil
}

// PublicURL is empty unless R2_PUBLIC_URL is set
func (r *R2Storage) PublicURL(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return r.publicURL + "/" + key
}

// LocalStorage keeps files under a directory served at /<dir>
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// localContentTypes covers what the app stores: exports and brand images
var localContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

func (l *LocalStorage) Put(ctx context.Context, body io.Reader, key, contentType string, size int64) (*StorageResult, error) {
	fullPath := filepath.Join(l.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, body)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	return &StorageResult{Key: key, FileSize: written, MimeType: contentType, URL: l.PublicURL(key)}, nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	contentType, ok := localContentTypes[strings.ToLower(filepath.Ext(key))]
	if !ok {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.baseDir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SignedURL is the plain file path; local files are served without signing
func (l *LocalStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return l.PublicURL(key), nil
}

func (l *LocalStorage) PublicURL(key string) string {
	return "/" + filepath.Join(l.baseDir, key)
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SafeFileName turns a letter name into something usable as a file name
func SafeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "letter"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name
}

// GenerateStorageKey creates a unique key under prefix keeping the file extension
func GenerateStorageKey(prefix string, originalFilename string) string {
	filename := fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), filepath.Ext(originalFilename))
	return path.Join(prefix, filename)
}

// GenerateLetterExportKey creates a storage key for an exported PDF or DOCX
func GenerateLetterExportKey(userID, letterID, format string) string {
	return GenerateStorageKey(fmt.Sprintf("users/%s/letters/%s/exports", userID, letterID), "export."+format)
}

// GenerateBrandAssetKey creates a storage key for a brand profile logo or signature
func GenerateBrandAssetKey(userID, profileID, kind, originalFilename string) string {
	return GenerateStorageKey(fmt.Sprintf("users/%s/profiles/%s/%s", userID, profileID, kind), originalFilename)
}
