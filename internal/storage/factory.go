package storage

import (
	"fmt"
	"strings"
)

// StorageTypeLocal stores artifacts in a directory served under a URL prefix.
const StorageTypeLocal StorageType = "local"

// Config selects and configures a storage backend.
type Config struct {
	Type StorageType

	// local
	Dir       string
	URLPrefix string

	// S3-compatible
	S3 S3Config
}

// NewStorage creates an ObjectStorage instance based on the configuration.
func NewStorage(cfg *Config) (ObjectStorage, error) {
	switch cfg.Type {
	case "", StorageTypeLocal:
		return NewLocalStorage(cfg.Dir, cfg.URLPrefix)
	case StorageTypeS3, StorageTypeR2, StorageTypeS3Compatible:
		s3cfg := cfg.S3
		s3cfg.Type = cfg.Type
		return NewS3Storage(&s3cfg)
	case "auto":
		s3cfg := cfg.S3
		s3cfg.Type = detectStorageType(s3cfg.Endpoint)
		return NewS3Storage(&s3cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// detectStorageType attempts to detect the storage type from the endpoint
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
