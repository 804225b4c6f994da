package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type StorageBackend string

const (
	StorageBackendAzureBlob StorageBackend = "azblob"
	StorageBackendS3        StorageBackend = "s3"
)

const (
	defaultBusinessTenantID = "organizations"
	defaultConsumerTenantID = "consumers"
)

var defaultScopes = []string{"https://storage.azure.com/user_impersonation", "offline_access"}

// ProviderConfig is the static sign-in configuration of one account kind.
type ProviderConfig struct {
	ClientID  string
	ReturnURL string
	BaseURL   string
	TenantID  string
	Scopes    []string
}

type StorageConfig struct {
	Backend   StorageBackend
	Container string
	S3RoleARN string
	S3Region  string
	// S3TokenScope is the scope of the token exchanged for the S3 role.
	// Empty selects the Entra token exchange audience.
	S3TokenScope string
}

type AppConfig struct {
	Business     ProviderConfig
	Consumer     ProviderConfig
	Storage      StorageConfig
	CacheDir     string
	LoginTimeout time.Duration
}

type ConfigError struct {
	message       string
	internalError error
}

func (err *ConfigError) Error() string {
	if err.internalError != nil {
		return fmt.Sprintf("Config Error: %s: %s", err.message, err.internalError.Error())
	}
	return fmt.Sprintf("Config Error: %s", err.message)
}

func (err *ConfigError) Unwrap() error {
	return err.internalError
}

func wrapError(msg string, err error) *ConfigError {
	return &ConfigError{message: msg, internalError: err}
}

var ErrUnknownStorageBackend = errors.New("unknown storage backend")

// BusinessConfigured reports whether both the Business client id and return
// URL are set. The Business option is only offered when they are.
func (cfg AppConfig) BusinessConfigured() bool {
	return cfg.Business.ClientID != "" && cfg.Business.ReturnURL != ""
}

// ParseScopes splits a comma or whitespace separated scope list, dropping
// blanks and duplicates while keeping first-seen order.
func ParseScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	scopes := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		scopes = append(scopes, f)
	}
	return scopes
}

func parseStorageBackend(s string) (StorageBackend, error) {
	switch StorageBackend(strings.ToLower(strings.TrimSpace(s))) {
	case "", StorageBackendAzureBlob:
		return StorageBackendAzureBlob, nil
	case StorageBackendS3:
		return StorageBackendS3, nil
	default:
		return "", wrapError(s, ErrUnknownStorageBackend)
	}
}
