package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"letterhead/models"

	"gorm.io/gorm"
)

const MaxUploadSize = 2 * 1024 * 1024 // 2MB

// Brand asset kinds
const (
	AssetLogo      = "logo"
	AssetSignature = "signature"
)

var ErrInvalidUpload = errors.New("invalid upload")

var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ValidateImageUpload checks an uploaded logo or signature is a PNG, JPEG or
// WebP image within the size limit. It returns the detected content type.
func ValidateImageUpload(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxUploadSize {
		return "", fmt.Errorf("%w: file size exceeds maximum allowed size of 2MB", ErrInvalidUpload)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	want, ok := allowedImageTypes[ext]
	if !ok {
		return "", fmt.Errorf("%w: only PNG, JPG and WebP images are allowed", ErrInvalidUpload)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// Read first 512 bytes to detect content type
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if detected != want {
		return "", fmt.Errorf("%w: file content does not match its %s extension", ErrInvalidUpload, ext)
	}
	return detected, nil
}

// UploadBrandAsset stores a logo or signature image and points the profile at it.
// The previous asset of the same kind is removed when it lived in storage.
func UploadBrandAsset(ctx context.Context, db *gorm.DB, userID, profileID, kind string, fileHeader *multipart.FileHeader) (*models.BrandProfile, error) {
	if kind != AssetLogo && kind != AssetSignature {
		return nil, fmt.Errorf("%w: unknown asset kind %q", ErrInvalidUpload, kind)
	}
	profile, err := GetBrandProfile(db, userID, profileID)
	if err != nil {
		return nil, err
	}
	contentType, err := ValidateImageUpload(fileHeader)
	if err != nil {
		return nil, err
	}
	if Storage == nil {
		return nil, fmt.Errorf("storage not initialized")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := GenerateBrandAssetKey(userID, profileID, kind, fileHeader.Filename)
	result, err := Storage.Put(ctx, file, key, contentType, fileHeader.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", kind, err)
	}

	column, previous := "logo_url", profile.LogoURL
	if kind == AssetSignature {
		column, previous = "signature_url", profile.SignatureURL
	}
	if err := db.Model(profile).Update(column, result.URL).Error; err != nil {
		if delErr := Storage.Delete(ctx, key); delErr != nil {
			log.Printf("[WARNING] Failed to remove orphaned %s %s: %v", kind, key, delErr)
		}
		return nil, fmt.Errorf("failed to update brand profile: %w", err)
	}
	if kind == AssetSignature {
		profile.SignatureURL = result.URL
	} else {
		profile.LogoURL = result.URL
	}

	if old := storageKeyFor(previous); old != "" && old != key {
		if err := Storage.Delete(ctx, old); err != nil {
			log.Printf("[WARNING] Failed to remove previous %s %s: %v", kind, old, err)
		}
	}

	log.Printf("[INFO] Uploaded %s for brand profile %s (%d bytes)", kind, profileID, result.FileSize)
	return profile, nil
}

// storageKeyFor recovers the storage key from an asset URL this app issued,
// or "" for external URLs
func storageKeyFor(url string) string {
	const marker = "users/"
	if Storage == nil || url == "" {
		return ""
	}
	i := strings.Index(url, marker)
	if i < 0 {
		return ""
	}
	key := url[i:]
	if Storage.PublicURL(key) != url {
		return ""
	}
	return key
}
