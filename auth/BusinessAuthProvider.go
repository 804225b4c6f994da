package auth

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"lib-photo-session-go/config"
)

// BusinessAuthProvider signs work or school accounts in through a browser
// redirect. Every sign-in is interactive.
type BusinessAuthProvider struct {
	credentialProvider
	baseURL string
}

func NewBusinessAuthProvider(cfg config.ProviderConfig, tokenCache azidentity.Cache) *BusinessAuthProvider {
	p := &BusinessAuthProvider{baseURL: cfg.BaseURL}
	p.kind = Business
	p.scopes = cfg.Scopes
	p.newCredential = func(_ azidentity.AuthenticationRecord, _ bool) (interactiveCredential, error) {
		return azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			ClientID:    cfg.ClientID,
			TenantID:    cfg.TenantID,
			RedirectURL: cfg.ReturnURL,
			Cache:       tokenCache,
		})
	}
	return p
}

func (p *BusinessAuthProvider) Authenticate(ctx context.Context, baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return wrapServiceError("business sign-in needs a base URL", nil)
	}
	scopes := append([]string{ResourceScope(baseURL)}, p.scopes...)
	return p.authenticateInteractive(ctx, scopes)
}

// RestoreCachedOrAuthenticate never restores for business accounts.
func (p *BusinessAuthProvider) RestoreCachedOrAuthenticate(ctx context.Context) error {
	return p.Authenticate(ctx, p.baseURL)
}
