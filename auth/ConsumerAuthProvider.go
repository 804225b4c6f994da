package auth

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"lib-photo-session-go/config"
)

// ConsumerAuthProvider signs personal accounts in through a browser redirect,
// reusing the most recent cached account when its tokens are still valid.
type ConsumerAuthProvider struct {
	credentialProvider
}

func NewConsumerAuthProvider(cfg config.ProviderConfig, records *RecordCache, tokenCache azidentity.Cache) *ConsumerAuthProvider {
	p := &ConsumerAuthProvider{}
	p.kind = Consumer
	p.scopes = cfg.Scopes
	p.records = records
	p.newCredential = func(record azidentity.AuthenticationRecord, silent bool) (interactiveCredential, error) {
		return azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			ClientID:                       cfg.ClientID,
			TenantID:                       cfg.TenantID,
			RedirectURL:                    cfg.ReturnURL,
			AuthenticationRecord:           record,
			DisableAutomaticAuthentication: silent,
			Cache:                          tokenCache,
		})
	}
	return p
}

// Authenticate skips the cache. The base URL plays no part in consumer scopes.
func (p *ConsumerAuthProvider) Authenticate(ctx context.Context, _ string) error {
	return p.authenticateInteractive(ctx, p.scopes)
}

func (p *ConsumerAuthProvider) RestoreCachedOrAuthenticate(ctx context.Context) error {
	return p.restoreCachedOrAuthenticate(ctx)
}
