package auth

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity/cache"
	"github.com/charmbracelet/log"

	"lib-photo-session-go/config"
)

const tokenCacheName = "photobrowser"

type AuthProviderFactory interface {
	NewProvider(kind AccountKind, cfg config.AppConfig) (AuthProvider, error)
}

// CloudAuthProviderFactory builds azidentity backed providers sharing one
// record cache and one persistent token cache.
type CloudAuthProviderFactory struct {
	records    *RecordCache
	tokenCache azidentity.Cache
	prompt     DeviceCodePrompt
}

// NewCloudAuthProviderFactory keeps account records under cacheDir. When the
// platform offers no encrypted token storage, tokens are kept in memory only
// and cached accounts cannot be restored by later processes.
func NewCloudAuthProviderFactory(cacheDir string, prompt DeviceCodePrompt) (*CloudAuthProviderFactory, error) {
	records, err := NewRecordCache(cacheDir)
	if err != nil {
		return nil, err
	}
	tokenCache, err := cache.New(&cache.Options{Name: tokenCacheName})
	if err != nil {
		log.Warn("Persistent token cache unavailable, cached sign-ins will not survive restarts", "error", err)
		tokenCache = azidentity.Cache{}
	}
	return &CloudAuthProviderFactory{records: records, tokenCache: tokenCache, prompt: prompt}, nil
}

func (f *CloudAuthProviderFactory) NewProvider(kind AccountKind, cfg config.AppConfig) (AuthProvider, error) {
	switch kind {
	case Business:
		return NewBusinessAuthProvider(cfg.Business, f.tokenCache), nil
	case Consumer:
		return NewConsumerAuthProvider(cfg.Consumer, f.records, f.tokenCache), nil
	case ConsumerInteractive:
		return NewConsumerInteractiveAuthProvider(cfg.Consumer, f.records, f.tokenCache, f.prompt), nil
	default:
		return nil, wrapServiceError(fmt.Sprintf("no provider for account kind %d", int(kind)), ErrUnknownAccountKind)
	}
}
