package secrets

import (
	"context"
	"fmt"
	"time"
)

// CloudSecretsProxy resolves named secrets from a cloud secret store.
type CloudSecretsProxy interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

type CloudSecretsCacheOptions struct {
	MaxEntries int
	TTL        time.Duration
}

var defaultCacheOptions = CloudSecretsCacheOptions{
	MaxEntries: 16,
	TTL:        10 * time.Minute,
}

func CloudSecretsProxyFactory(handler ProxyAuthHandler, options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	if options == nil {
		options = &defaultCacheOptions
	}
	return handler.createSecretsProxy(options)
}

type CloudSecretsError struct {
	message       string
	internalError error
}

func (err *CloudSecretsError) Error() string {
	if err.internalError != nil {
		return fmt.Sprintf("CloudSecrets Error: %s: %s", err.message, err.internalError.Error())
	}
	return fmt.Sprintf("CloudSecrets Error: %s", err.message)
}

func (err *CloudSecretsError) Unwrap() error {
	return err.internalError
}

func wrapError(msg string, err error) *CloudSecretsError {
	return &CloudSecretsError{message: msg, internalError: err}
}
