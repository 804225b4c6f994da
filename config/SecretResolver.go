package config

import (
	"context"
	"net/url"
	"os"
	"strings"
	"sync"

	"lib-photo-session-go/secrets"
)

const (
	schemeKeyVault       = "keyvault"
	schemeSecretsManager = "secretsmanager"
)

// Credentials used to read secret references. When unset the default
// identity chain of each cloud is used.
const (
	envSecretsTenantID     = "PHOTO_SECRETS_TENANT_ID"
	envSecretsClientID     = "PHOTO_SECRETS_CLIENT_ID"
	envSecretsClientSecret = "PHOTO_SECRETS_CLIENT_SECRET"
	envSecretsAccessKeyID  = "PHOTO_SECRETS_ACCESS_KEY_ID"
	envSecretsAccessKey    = "PHOTO_SECRETS_SECRET_ACCESS_KEY"
)

// SecretResolver turns a secret reference into the secret value.
type SecretResolver interface {
	Resolve(ctx context.Context, reference string) (string, error)
}

// IsSecretReference reports whether value is written as
// keyvault://<vault-host>/<name> or secretsmanager://<region>/<name>.
func IsSecretReference(value string) bool {
	return strings.HasPrefix(value, schemeKeyVault+"://") ||
		strings.HasPrefix(value, schemeSecretsManager+"://")
}

// CloudSecretResolver resolves references through one cached secrets proxy
// per vault or region.
type CloudSecretResolver struct {
	options  *secrets.CloudSecretsCacheOptions
	newProxy func(handler secrets.ProxyAuthHandler, options *secrets.CloudSecretsCacheOptions) (secrets.CloudSecretsProxy, error)

	mu      sync.Mutex
	proxies map[string]secrets.CloudSecretsProxy
}

func NewCloudSecretResolver(options *secrets.CloudSecretsCacheOptions) *CloudSecretResolver {
	return &CloudSecretResolver{
		options:  options,
		newProxy: secrets.CloudSecretsProxyFactory,
		proxies:  make(map[string]secrets.CloudSecretsProxy),
	}
}

func (r *CloudSecretResolver) Resolve(ctx context.Context, reference string) (string, error) {
	u, err := url.Parse(reference)
	if err != nil {
		return "", wrapError("malformed secret reference", err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || name == "" {
		return "", wrapError("secret reference needs a host and a name: "+reference, nil)
	}

	handler, err := secretsHandler(u.Scheme, u.Host)
	if err != nil {
		return "", err
	}
	proxy, err := r.proxyFor(u.Scheme+"://"+u.Host, handler)
	if err != nil {
		return "", err
	}
	return proxy.GetSecret(ctx, name)
}

// secretsHandler picks the identity for a vault or region. Explicit client
// credentials in the environment take precedence over the default chain.
func secretsHandler(scheme string, host string) (secrets.ProxyAuthHandler, error) {
	switch scheme {
	case schemeKeyVault:
		vaultURL := "https://" + host + "/"
		clientSecret := os.Getenv(envSecretsClientSecret)
		if clientSecret == "" {
			return secrets.ProxyAuthHandlerAzureDefaultIdentity{KeyVaultURL: vaultURL}, nil
		}
		return secrets.ProxyAuthHandlerAzureClientSecretIdentity{
			KeyVaultURL:  vaultURL,
			TenantID:     os.Getenv(envSecretsTenantID),
			ClientID:     os.Getenv(envSecretsClientID),
			ClientSecret: clientSecret,
		}, nil
	case schemeSecretsManager:
		accessID, accessKey := os.Getenv(envSecretsAccessKeyID), os.Getenv(envSecretsAccessKey)
		if accessID == "" || accessKey == "" {
			return secrets.ProxyAuthHandlerAWSDefaultIdentity{Region: host}, nil
		}
		return secrets.ProxyAuthHandlerAWSConfiguredIdentity{Region: host, AccessID: accessID, AccessKey: accessKey}, nil
	default:
		return nil, wrapError("unsupported secret reference scheme "+scheme, nil)
	}
}

func (r *CloudSecretResolver) proxyFor(key string, handler secrets.ProxyAuthHandler) (secrets.CloudSecretsProxy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if proxy, ok := r.proxies[key]; ok {
		return proxy, nil
	}
	proxy, err := r.newProxy(handler, r.options)
	if err != nil {
		return nil, wrapError("unable to create secrets proxy for "+key, err)
	}
	r.proxies[key] = proxy
	return proxy, nil
}
