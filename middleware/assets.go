package middleware

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Assets hashed at startup for cache busting, relative to the static dir
var versionedAssets = []string{
	"css/app.css",
	"js/app.js",
}

var (
	assetVersions   map[string]string
	assetVersionsMu sync.RWMutex
)

// InitAssetVersions computes file hashes for the static assets under dir
func InitAssetVersions(dir string) {
	versions := make(map[string]string, len(versionedAssets))
	for _, name := range versionedAssets {
		version := computeFileHash(filepath.Join(dir, name))
		if version == "" {
			version = "1"
		}
		versions[name] = version
	}

	assetVersionsMu.Lock()
	assetVersions = versions
	assetVersionsMu.Unlock()

	log.Printf("[INFO] Asset versions initialized: %d files", len(versions))
}

// computeFileHash returns the first 8 characters of the MD5 hash of a file
func computeFileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[WARNING] Failed to open file for hashing %s: %v", path, err)
		return ""
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		log.Printf("[WARNING] Failed to hash file %s: %v", path, err)
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))[:8]
}

// AssetURL returns the public URL of a static asset with its version query
func AssetURL(name string) string {
	assetVersionsMu.RLock()
	version, ok := assetVersions[name]
	assetVersionsMu.RUnlock()
	if !ok {
		version = "1"
	}
	return "/static/" + name + "?v=" + version
}
