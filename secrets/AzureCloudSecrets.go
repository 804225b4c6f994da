package secrets

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

type keyVaultClient interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

type AzureCloudSecretsProxy struct {
	secretServicesClient keyVaultClient
	cache                *secretCache
}

func (handler ProxyAuthHandlerAzureDefaultIdentity) createSecretsProxy(options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, wrapError("unable to obtain default Azure credential", err)
	}
	return createProxyFromCredential(handler.KeyVaultURL, credential, options)
}

func (handler ProxyAuthHandlerAzureClientSecretIdentity) createSecretsProxy(options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	credential, err := azidentity.NewClientSecretCredential(handler.TenantID, handler.ClientID,
		handler.ClientSecret, nil)
	if err != nil {
		return nil, wrapError("unable to obtain client secret credential", err)
	}
	return createProxyFromCredential(handler.KeyVaultURL, credential, options)
}

func createProxyFromCredential(vaultURL string, credential azcore.TokenCredential, options *CloudSecretsCacheOptions) (CloudSecretsProxy, error) {
	client, err := azsecrets.NewClient(vaultURL, credential, nil)
	if err != nil {
		return nil, wrapError("unable to create Azure KeyVault service client", err)
	}
	return &AzureCloudSecretsProxy{secretServicesClient: client, cache: newSecretCache(options)}, nil
}

func (az *AzureCloudSecretsProxy) fetch(ctx context.Context, name string) (secret, error) {
	resp, err := az.secretServicesClient.GetSecret(ctx, name, "", nil)
	if err != nil {
		return secret{}, wrapError("unable to retrieve secret "+name, err)
	}
	if resp.Value == nil {
		return secret{}, wrapError("secret "+name+" has no value", nil)
	}
	return secret{value: *resp.Value}, nil
}

func (az *AzureCloudSecretsProxy) GetSecret(ctx context.Context, name string) (string, error) {
	s, err := az.cache.get(ctx, name, az.fetch)
	if err != nil {
		return "", err
	}
	return s.value, nil
}
