package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	envBusinessClientID  = "PHOTO_BUSINESS_CLIENT_ID"
	envBusinessReturnURL = "PHOTO_BUSINESS_RETURN_URL"
	envBusinessBaseURL   = "PHOTO_BUSINESS_BASE_URL"
	envBusinessTenantID  = "PHOTO_BUSINESS_TENANT_ID"
	envConsumerClientID  = "PHOTO_CONSUMER_CLIENT_ID"
	envConsumerReturnURL = "PHOTO_CONSUMER_RETURN_URL"
	envConsumerBaseURL   = "PHOTO_CONSUMER_BASE_URL"
	envScopes            = "PHOTO_SCOPES"
	envStorageBackend    = "PHOTO_STORAGE_BACKEND"
	envContainer         = "PHOTO_CONTAINER"
	envS3RoleARN         = "PHOTO_S3_ROLE_ARN"
	envS3Region          = "PHOTO_S3_REGION"
	envS3TokenScope      = "PHOTO_S3_TOKEN_SCOPE"
	envCacheDir          = "PHOTO_CACHE_DIR"
	envLoginTimeout      = "PHOTO_LOGIN_TIMEOUT"
)

// Load reads the application configuration from the environment, after
// merging envFile into it when envFile is non-empty and exists. Variables
// already set in the process environment win over the file. Values that are
// secret references are resolved with resolver; a nil resolver leaves them
// untouched.
func Load(ctx context.Context, envFile string, resolver SecretResolver) (AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return AppConfig{}, wrapError("unable to load "+envFile, err)
			}
			log.Debug("No env file found, using process environment", "path", envFile)
		}
	}

	get := func(key string) (string, error) {
		value := os.Getenv(key)
		if resolver == nil || !IsSecretReference(value) {
			return value, nil
		}
		resolved, err := resolver.Resolve(ctx, value)
		if err != nil {
			return "", wrapError("unable to resolve "+key, err)
		}
		return resolved, nil
	}

	var cfg AppConfig
	var err error
	fields := []struct {
		key    string
		target *string
	}{
		{envBusinessClientID, &cfg.Business.ClientID},
		{envBusinessReturnURL, &cfg.Business.ReturnURL},
		{envBusinessBaseURL, &cfg.Business.BaseURL},
		{envBusinessTenantID, &cfg.Business.TenantID},
		{envConsumerClientID, &cfg.Consumer.ClientID},
		{envConsumerReturnURL, &cfg.Consumer.ReturnURL},
		{envConsumerBaseURL, &cfg.Consumer.BaseURL},
		{envContainer, &cfg.Storage.Container},
		{envS3RoleARN, &cfg.Storage.S3RoleARN},
		{envS3Region, &cfg.Storage.S3Region},
		{envS3TokenScope, &cfg.Storage.S3TokenScope},
		{envCacheDir, &cfg.CacheDir},
	}
	for _, f := range fields {
		if *f.target, err = get(f.key); err != nil {
			return AppConfig{}, err
		}
	}

	if cfg.Business.TenantID == "" {
		cfg.Business.TenantID = defaultBusinessTenantID
	}
	cfg.Consumer.TenantID = defaultConsumerTenantID

	cfg.Consumer.Scopes = ParseScopes(os.Getenv(envScopes))
	if len(cfg.Consumer.Scopes) == 0 {
		cfg.Consumer.Scopes = append([]string(nil), defaultScopes...)
	}

	if cfg.Storage.Backend, err = parseStorageBackend(os.Getenv(envStorageBackend)); err != nil {
		return AppConfig{}, err
	}

	if timeout := os.Getenv(envLoginTimeout); timeout != "" {
		if cfg.LoginTimeout, err = time.ParseDuration(timeout); err != nil {
			return AppConfig{}, wrapError("invalid "+envLoginTimeout, err)
		}
	}
	return cfg, nil
}
