package auth

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"lib-photo-session-go/config"
)

// DeviceCodePrompt shows the user where to enter a device code.
type DeviceCodePrompt func(ctx context.Context, message azidentity.DeviceCodeMessage) error

// ConsumerInteractiveAuthProvider signs personal accounts in with a device
// code, for hosts that cannot receive a browser redirect.
type ConsumerInteractiveAuthProvider struct {
	credentialProvider
}

func NewConsumerInteractiveAuthProvider(cfg config.ProviderConfig, records *RecordCache, tokenCache azidentity.Cache,
	prompt DeviceCodePrompt) *ConsumerInteractiveAuthProvider {
	p := &ConsumerInteractiveAuthProvider{}
	p.kind = ConsumerInteractive
	p.scopes = cfg.Scopes
	p.records = records
	p.newCredential = func(record azidentity.AuthenticationRecord, silent bool) (interactiveCredential, error) {
		return azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
			ClientID:                       cfg.ClientID,
			TenantID:                       cfg.TenantID,
			AuthenticationRecord:           record,
			DisableAutomaticAuthentication: silent,
			Cache:                          tokenCache,
			UserPrompt:                     prompt,
		})
	}
	return p
}

func (p *ConsumerInteractiveAuthProvider) Authenticate(ctx context.Context, _ string) error {
	return p.authenticateInteractive(ctx, p.scopes)
}

func (p *ConsumerInteractiveAuthProvider) RestoreCachedOrAuthenticate(ctx context.Context) error {
	return p.restoreCachedOrAuthenticate(ctx)
}
