package session

import (
	"context"
	"time"

	"lib-photo-session-go/auth"
	"lib-photo-session-go/config"
	"lib-photo-session-go/storage"
)

type StorageClientFactory interface {
	Create(ctx context.Context, baseURL string, provider auth.AuthProvider) (*ClientSession, error)
}

// CloudStorageClientFactory binds the signed-in credential of a provider to
// the configured storage backend. All failures are reported as
// *auth.ServiceError.
type CloudStorageClientFactory struct {
	storageConfig config.StorageConfig
	newProxy      func(handler storage.ProxyAuthHandler) (storage.CloudStorageProxy, error)
}

func NewCloudStorageClientFactory(storageConfig config.StorageConfig) *CloudStorageClientFactory {
	return &CloudStorageClientFactory{storageConfig: storageConfig, newProxy: storage.CloudStorageProxyFactory}
}

func (f *CloudStorageClientFactory) Create(ctx context.Context, baseURL string, provider auth.AuthProvider) (*ClientSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, auth.NewServiceError("storage client creation cancelled", err)
	}
	credential := provider.Credential()
	if credential == nil {
		return nil, auth.NewServiceError(provider.Kind().String()+" provider has no signed-in credential", nil)
	}

	var handler storage.ProxyAuthHandler
	switch f.storageConfig.Backend {
	case config.StorageBackendS3:
		handler = storage.ProxyAuthHandlerAWSWebIdentity{
			AccountURL: baseURL,
			Region:     f.storageConfig.S3Region,
			RoleARN:    f.storageConfig.S3RoleARN,
			TokenScope: f.storageConfig.S3TokenScope,
			Credential: credential,
		}
	default:
		handler = storage.ProxyAuthHandlerAzureToken{AccountURL: baseURL, Credential: credential}
	}

	proxy, err := f.newProxy(handler)
	if err != nil {
		return nil, auth.NewServiceError("unable to create storage client for "+baseURL, err)
	}
	return &ClientSession{
		Kind:      provider.Kind(),
		BaseURL:   baseURL,
		Container: f.storageConfig.Container,
		Storage:   proxy,
		Provider:  provider,
		CreatedAt: time.Now(),
	}, nil
}
