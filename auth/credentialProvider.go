package auth

import (
	"context"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/charmbracelet/log"
)

// interactiveCredential is satisfied by *azidentity.InteractiveBrowserCredential
// and *azidentity.DeviceCodeCredential.
type interactiveCredential interface {
	azcore.TokenCredential
	Authenticate(ctx context.Context, opts *policy.TokenRequestOptions) (azidentity.AuthenticationRecord, error)
}

// credentialBuilder creates a credential. With silent set, the credential
// must never prompt and only uses accounts found through record.
type credentialBuilder func(record azidentity.AuthenticationRecord, silent bool) (interactiveCredential, error)

type credentialProvider struct {
	kind          AccountKind
	scopes        []string
	records       *RecordCache
	newCredential credentialBuilder

	mu         sync.Mutex
	credential interactiveCredential
}

func (p *credentialProvider) Kind() AccountKind {
	return p.kind
}

func (p *credentialProvider) Credential() azcore.TokenCredential {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.credential == nil {
		return nil
	}
	return p.credential
}

func (p *credentialProvider) setCredential(credential interactiveCredential) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.credential = credential
}

func (p *credentialProvider) authenticateInteractive(ctx context.Context, scopes []string) error {
	credential, err := p.newCredential(azidentity.AuthenticationRecord{}, false)
	if err != nil {
		return wrapServiceError("unable to create "+p.kind.String()+" credential", err)
	}
	record, err := credential.Authenticate(ctx, &policy.TokenRequestOptions{Scopes: scopes})
	if err != nil {
		return wrapServiceError(p.kind.String()+" sign-in failed", err)
	}
	if p.records != nil {
		if err := p.records.Save(p.kind, record); err != nil {
			log.Debug("Signed in but could not cache account", "kind", p.kind, "error", err)
		}
	}
	log.Debug("Signed in", "kind", p.kind, "user", record.Username)
	p.setCredential(credential)
	return nil
}

func (p *credentialProvider) restoreCached(ctx context.Context) bool {
	if p.records == nil {
		return false
	}
	record, ok := p.records.Load(p.kind)
	if !ok {
		log.Debug("No cached account", "kind", p.kind)
		return false
	}
	credential, err := p.newCredential(record, true)
	if err != nil {
		log.Debug("Unable to create silent credential", "kind", p.kind, "error", err)
		return false
	}
	if _, err := credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: p.scopes}); err != nil {
		log.Debug("Cached account could not be restored", "kind", p.kind, "user", record.Username, "error", err)
		return false
	}
	log.Debug("Restored cached account", "kind", p.kind, "user", record.Username)
	p.setCredential(credential)
	return true
}

func (p *credentialProvider) restoreCachedOrAuthenticate(ctx context.Context) error {
	if p.restoreCached(ctx) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return wrapServiceError(p.kind.String()+" sign-in cancelled", err)
	}
	return p.authenticateInteractive(ctx, p.scopes)
}

func (p *credentialProvider) SignOut(_ context.Context) error {
	p.setCredential(nil)
	if p.records == nil {
		return nil
	}
	return p.records.Remove(p.kind)
}
