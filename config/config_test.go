package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lib-photo-session-go/secrets"
)

type fakeProxy struct {
	values map[string]string
}

func (f *fakeProxy) GetSecret(_ context.Context, name string) (string, error) {
	v, ok := f.values[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func clearEnv(t *testing.T) {
	for _, key := range []string{envBusinessClientID, envBusinessReturnURL, envBusinessBaseURL,
		envBusinessTenantID, envConsumerClientID, envConsumerReturnURL, envConsumerBaseURL, envScopes,
		envStorageBackend, envContainer, envS3RoleARN, envS3Region, envS3TokenScope, envCacheDir, envLoginTimeout,
		envSecretsTenantID, envSecretsClientID, envSecretsClientSecret, envSecretsAccessKeyID, envSecretsAccessKey} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestParseScopesKeepsOrderAndDropsDuplicates(t *testing.T) {
	scopes := ParseScopes("onedrive.readonly, wl.signin offline_access,wl.signin,,")
	assert.Equal(t, []string{"onedrive.readonly", "wl.signin", "offline_access"}, scopes)
	assert.Empty(t, ParseScopes(" , "))
}

func TestBusinessConfigured(t *testing.T) {
	cases := []struct {
		clientID, returnURL string
		want                bool
	}{
		{"", "", false},
		{"id", "", false},
		{"", "http://localhost:8080", false},
		{"id", "http://localhost:8080", true},
	}
	for _, c := range cases {
		cfg := AppConfig{Business: ProviderConfig{ClientID: c.clientID, ReturnURL: c.returnURL}}
		assert.Equal(t, c.want, cfg.BusinessConfigured(), "%q %q", c.clientID, c.returnURL)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.env"), nil)
	require.NoError(t, err)
	assert.Equal(t, "organizations", cfg.Business.TenantID)
	assert.Equal(t, "consumers", cfg.Consumer.TenantID)
	assert.Equal(t, defaultScopes, cfg.Consumer.Scopes)
	assert.Equal(t, StorageBackendAzureBlob, cfg.Storage.Backend)
	assert.False(t, cfg.BusinessConfigured())
	assert.Zero(t, cfg.LoginTimeout)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PHOTO_BUSINESS_CLIENT_ID=biz-id\n" +
		"PHOTO_BUSINESS_RETURN_URL=http://localhost:8080\n" +
		"PHOTO_CONSUMER_BASE_URL=https://photos.blob.core.windows.net/\n" +
		"PHOTO_SCOPES=a,b,a\n" +
		"PHOTO_STORAGE_BACKEND=S3\n" +
		"PHOTO_S3_TOKEN_SCOPE=api://photos-federation/.default\n" +
		"PHOTO_LOGIN_TIMEOUT=90s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(context.Background(), envFile, nil)
	require.NoError(t, err)
	assert.Equal(t, "biz-id", cfg.Business.ClientID)
	assert.True(t, cfg.BusinessConfigured())
	assert.Equal(t, "https://photos.blob.core.windows.net/", cfg.Consumer.BaseURL)
	assert.Equal(t, []string{"a", "b"}, cfg.Consumer.Scopes)
	assert.Equal(t, StorageBackendS3, cfg.Storage.Backend)
	assert.Equal(t, "api://photos-federation/.default", cfg.Storage.S3TokenScope)
	assert.Equal(t, 90*time.Second, cfg.LoginTimeout)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv(envStorageBackend, "ftp")
	_, err := Load(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrUnknownStorageBackend)
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	clearEnv(t)
	t.Setenv(envConsumerClientID, "keyvault://photos-kv.vault.azure.net/consumer-client-id")
	t.Setenv(envS3RoleARN, "secretsmanager://us-east-1/photo/role")

	var handlers []secrets.ProxyAuthHandler
	resolver := NewCloudSecretResolver(nil)
	resolver.newProxy = func(handler secrets.ProxyAuthHandler, _ *secrets.CloudSecretsCacheOptions) (secrets.CloudSecretsProxy, error) {
		handlers = append(handlers, handler)
		return &fakeProxy{values: map[string]string{
			"consumer-client-id": "resolved-id",
			"photo/role":         "arn:aws:iam::123456789012:role/photos",
		}}, nil
	}

	cfg, err := Load(context.Background(), "", resolver)
	require.NoError(t, err)
	assert.Equal(t, "resolved-id", cfg.Consumer.ClientID)
	assert.Equal(t, "arn:aws:iam::123456789012:role/photos", cfg.Storage.S3RoleARN)
	require.Len(t, handlers, 2)
	assert.Equal(t, secrets.ProxyAuthHandlerAzureDefaultIdentity{KeyVaultURL: "https://photos-kv.vault.azure.net/"}, handlers[0])
	assert.Equal(t, secrets.ProxyAuthHandlerAWSDefaultIdentity{Region: "us-east-1"}, handlers[1])
}

func TestLoadResolvesWithConfiguredSecretCredentials(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PHOTO_BUSINESS_CLIENT_ID=keyvault://photos-kv.vault.azure.net/business-client-id\n" +
		"PHOTO_S3_ROLE_ARN=secretsmanager://eu-west-1/photo/role\n" +
		"PHOTO_SECRETS_TENANT_ID=contoso.onmicrosoft.com\n" +
		"PHOTO_SECRETS_CLIENT_ID=reader-app\n" +
		"PHOTO_SECRETS_CLIENT_SECRET=reader-secret\n" +
		"PHOTO_SECRETS_ACCESS_KEY_ID=AKIDEXAMPLE\n" +
		"PHOTO_SECRETS_SECRET_ACCESS_KEY=aws-secret\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	var handlers []secrets.ProxyAuthHandler
	resolver := NewCloudSecretResolver(nil)
	resolver.newProxy = func(handler secrets.ProxyAuthHandler, _ *secrets.CloudSecretsCacheOptions) (secrets.CloudSecretsProxy, error) {
		handlers = append(handlers, handler)
		return &fakeProxy{values: map[string]string{
			"business-client-id": "biz-id",
			"photo/role":         "arn:aws:iam::123456789012:role/photos",
		}}, nil
	}

	cfg, err := Load(context.Background(), envFile, resolver)
	require.NoError(t, err)
	assert.Equal(t, "biz-id", cfg.Business.ClientID)
	require.Len(t, handlers, 2)
	assert.Equal(t, secrets.ProxyAuthHandlerAzureClientSecretIdentity{
		KeyVaultURL:  "https://photos-kv.vault.azure.net/",
		TenantID:     "contoso.onmicrosoft.com",
		ClientID:     "reader-app",
		ClientSecret: "reader-secret",
	}, handlers[0])
	assert.Equal(t, secrets.ProxyAuthHandlerAWSConfiguredIdentity{
		Region:    "eu-west-1",
		AccessID:  "AKIDEXAMPLE",
		AccessKey: "aws-secret",
	}, handlers[1])
}

func TestResolveMalformedReference(t *testing.T) {
	resolver := NewCloudSecretResolver(nil)
	_, err := resolver.Resolve(context.Background(), "keyvault:///missing-host")
	var configError *ConfigError
	require.ErrorAs(t, err, &configError)
}
