package accountselection

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lib-photo-session-go/auth"
	"lib-photo-session-go/config"
	"lib-photo-session-go/session"
)

type fakeProvider struct {
	kind        auth.AccountKind
	authErr     error
	signOutErr  error
	block       chan struct{}
	started     chan struct{}
	authBaseURL string

	mu           sync.Mutex
	authCalls    int
	restoreCalls int
	signOutCalls int
}

func (p *fakeProvider) Kind() auth.AccountKind { return p.kind }

func (p *fakeProvider) wait(ctx context.Context) {
	if p.started != nil {
		close(p.started)
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
		}
	}
}

func (p *fakeProvider) Authenticate(ctx context.Context, baseURL string) error {
	p.mu.Lock()
	p.authCalls++
	p.authBaseURL = baseURL
	p.mu.Unlock()
	p.wait(ctx)
	return p.authErr
}

func (p *fakeProvider) RestoreCachedOrAuthenticate(ctx context.Context) error {
	p.mu.Lock()
	p.restoreCalls++
	p.mu.Unlock()
	p.wait(ctx)
	return p.authErr
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOutCalls++
	return p.signOutErr
}

func (p *fakeProvider) Credential() azcore.TokenCredential { return nil }

type fakeProviderFactory struct {
	provider *fakeProvider
	err      error
	kinds    []auth.AccountKind
}

func (f *fakeProviderFactory) NewProvider(kind auth.AccountKind, _ config.AppConfig) (auth.AuthProvider, error) {
	f.kinds = append(f.kinds, kind)
	if f.err != nil {
		return nil, f.err
	}
	f.provider.kind = kind
	return f.provider, nil
}

type fakeClientFactory struct {
	err      error
	baseURLs []string
}

func (f *fakeClientFactory) Create(_ context.Context, baseURL string, provider auth.AuthProvider) (*session.ClientSession, error) {
	f.baseURLs = append(f.baseURLs, baseURL)
	if f.err != nil {
		return nil, f.err
	}
	return &session.ClientSession{Kind: provider.Kind(), BaseURL: baseURL, Provider: provider}, nil
}

type navigation struct {
	screen session.Screen
	args   session.NavigationArgs
}

type fakeNavigator struct {
	mu    sync.Mutex
	calls []navigation

	entered chan struct{}
	release chan struct{}
}

func (n *fakeNavigator) Navigate(screen session.Screen, args session.NavigationArgs) {
	if n.entered != nil {
		close(n.entered)
		<-n.release
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navigation{screen: screen, args: args})
}

func (n *fakeNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fakeMetrics struct {
	attempts, failures, reuses, signOuts []string
}

func (m *fakeMetrics) RecordLoginAttempt(kind string, strategy string) {
	m.attempts = append(m.attempts, kind+"/"+strategy)
}
func (m *fakeMetrics) RecordLoginFailure(kind string)   { m.failures = append(m.failures, kind) }
func (m *fakeMetrics) RecordLoginLatency(time.Duration) {}
func (m *fakeMetrics) RecordSessionReuse(kind string)   { m.reuses = append(m.reuses, kind) }
func (m *fakeMetrics) RecordSignOut(kind string)        { m.signOuts = append(m.signOuts, kind) }

var fullConfig = config.AppConfig{
	Business: config.ProviderConfig{
		ClientID:  "biz-id",
		ReturnURL: "http://localhost:8080",
		BaseURL:   "https://contoso.blob.core.windows.net/",
	},
	Consumer: config.ProviderConfig{
		ClientID:  "consumer-id",
		ReturnURL: "http://localhost:8400",
		BaseURL:   "https://photos.blob.core.windows.net/",
		Scopes:    []string{"https://storage.azure.com/user_impersonation", "offline_access"},
	},
}

type fixture struct {
	app       *session.AppContext
	providers *fakeProviderFactory
	clients   *fakeClientFactory
	navigator *fakeNavigator
	metrics   *fakeMetrics
	logs      *bytes.Buffer
	ctrl      *Controller
}

func newFixture(t *testing.T, cfg config.AppConfig) *fixture {
	f := &fixture{
		app:       session.NewAppContext(),
		providers: &fakeProviderFactory{provider: &fakeProvider{}},
		clients:   &fakeClientFactory{},
		navigator: &fakeNavigator{},
		metrics:   &fakeMetrics{},
		logs:      &bytes.Buffer{},
	}
	logger := log.NewWithOptions(f.logs, log.Options{Level: log.DebugLevel})
	f.ctrl = NewController(f.app, cfg, f.providers, f.clients, f.navigator,
		WithLogger(logger), WithMetrics(f.metrics))
	t.Cleanup(f.ctrl.Close)
	return f
}

func TestSelectWithLiveSessionNavigatesWithoutLogin(t *testing.T) {
	for _, kind := range auth.AccountKinds {
		f := newFixture(t, fullConfig)
		require.NoError(t, f.app.SetSession(&session.ClientSession{Kind: auth.Consumer}))

		outcome := f.ctrl.SelectAccount(context.Background(), kind)

		assert.Equal(t, OutcomeReused, outcome, kind.String())
		assert.Empty(t, f.providers.kinds, kind.String())
		assert.Equal(t, 1, f.navigator.count(), kind.String())
		assert.True(t, f.navigator.calls[0].args.Reused)
		assert.Equal(t, 0, f.app.NavigationStack().Len())
		assert.Equal(t, []string{kind.String()}, f.metrics.reuses)
	}
}

func TestConsumerSignInWithoutCachedSession(t *testing.T) {
	f := newFixture(t, fullConfig)

	outcome := f.ctrl.SelectAccount(context.Background(), auth.Consumer)

	require.Equal(t, OutcomeNavigated, outcome)
	provider := f.providers.provider
	assert.Equal(t, 1, provider.restoreCalls)
	assert.Equal(t, 0, provider.authCalls)

	clientSession := f.app.Session()
	require.NotNil(t, clientSession)
	assert.Equal(t, auth.Consumer, clientSession.Kind)
	assert.Equal(t, []string{fullConfig.Consumer.BaseURL}, f.clients.baseURLs)

	require.Equal(t, 1, f.app.NavigationStack().Len())
	assert.True(t, f.app.NavigationStack().Items()[0].IsRoot)
	require.Equal(t, 1, f.navigator.count())
	assert.Equal(t, session.ScreenMain, f.navigator.calls[0].screen)
	assert.Equal(t, auth.Consumer, f.navigator.calls[0].args.Kind)
	assert.False(t, f.navigator.calls[0].args.Reused)
	assert.Equal(t, []string{"consumer/restore_or_interactive"}, f.metrics.attempts)
}

func TestBusinessSignInIsInteractive(t *testing.T) {
	f := newFixture(t, fullConfig)

	outcome := f.ctrl.SelectAccount(context.Background(), auth.Business)

	require.Equal(t, OutcomeNavigated, outcome)
	provider := f.providers.provider
	assert.Equal(t, 1, provider.authCalls)
	assert.Equal(t, 0, provider.restoreCalls)
	assert.Equal(t, fullConfig.Business.BaseURL, provider.authBaseURL)
	assert.Equal(t, []string{"business/interactive"}, f.metrics.attempts)
}

func TestServiceErrorLeavesScreenUntouched(t *testing.T) {
	for _, kind := range auth.AccountKinds {
		f := newFixture(t, fullConfig)
		f.providers.provider.authErr = auth.NewServiceError("user cancelled sign-in", nil)

		outcome := f.ctrl.SelectAccount(context.Background(), kind)

		assert.Equal(t, OutcomeFailed, outcome, kind.String())
		assert.Nil(t, f.app.Session(), kind.String())
		assert.Equal(t, 0, f.app.NavigationStack().Len(), kind.String())
		assert.Equal(t, 0, f.navigator.count(), kind.String())
		assert.Empty(t, f.clients.baseURLs, kind.String())
		assert.Contains(t, f.logs.String(), "user cancelled sign-in", kind.String())
		assert.Equal(t, []string{kind.String()}, f.metrics.failures)
	}
}

func TestRetryAfterFailure(t *testing.T) {
	f := newFixture(t, fullConfig)
	f.providers.provider.authErr = auth.NewServiceError("network unreachable", nil)
	require.Equal(t, OutcomeFailed, f.ctrl.SelectAccount(context.Background(), auth.Consumer))

	f.providers.provider.authErr = nil
	require.Equal(t, OutcomeNavigated, f.ctrl.SelectAccount(context.Background(), auth.ConsumerInteractive))
	assert.Equal(t, auth.ConsumerInteractive, f.app.Session().Kind)
	assert.Equal(t, 1, f.navigator.count())
}

func TestStorageClientFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, fullConfig)
	f.clients.err = auth.NewServiceError("unable to create storage client", errors.New("bad url"))

	assert.Equal(t, OutcomeFailed, f.ctrl.SelectAccount(context.Background(), auth.Consumer))
	assert.Nil(t, f.app.Session())
	assert.Equal(t, 0, f.navigator.count())
	assert.Contains(t, f.logs.String(), "unable to create storage client")
}

func TestProviderFactoryFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, fullConfig)
	f.providers.err = errors.New("no provider")

	assert.Equal(t, OutcomeFailed, f.ctrl.SelectAccount(context.Background(), auth.Consumer))
	assert.Nil(t, f.app.Session())
	assert.Equal(t, 0, f.navigator.count())
}

func TestOnScreenShownRevokesSession(t *testing.T) {
	for _, kind := range auth.AccountKinds {
		for _, signOutErr := range []error{nil, errors.New("token endpoint unreachable")} {
			f := newFixture(t, fullConfig)
			provider := &fakeProvider{kind: kind, signOutErr: signOutErr}
			require.NoError(t, f.app.SetSession(&session.ClientSession{Kind: kind, Provider: provider}))

			f.ctrl.OnScreenShown(context.Background())

			assert.Nil(t, f.app.Session(), kind.String())
			assert.Equal(t, 1, provider.signOutCalls, kind.String())
			assert.Equal(t, []string{kind.String()}, f.metrics.signOuts)
		}
	}
}

func TestOnScreenShownWithoutSession(t *testing.T) {
	f := newFixture(t, fullConfig)

	state := f.ctrl.OnScreenShown(context.Background())

	assert.True(t, state.BusinessVisible)
	assert.Equal(t, auth.AccountKinds, state.Options)
	assert.Empty(t, f.metrics.signOuts)
}

func TestBusinessOptionVisibility(t *testing.T) {
	for _, c := range []struct {
		clientID, returnURL string
		visible             bool
	}{
		{"", "", false},
		{"biz-id", "", false},
		{"", "http://localhost:8080", false},
		{"biz-id", "http://localhost:8080", true},
	} {
		cfg := fullConfig
		cfg.Business.ClientID = c.clientID
		cfg.Business.ReturnURL = c.returnURL

		assert.Equal(t, c.visible, BusinessOptionVisible(cfg))
		f := newFixture(t, cfg)
		state := f.ctrl.OnScreenShown(context.Background())
		assert.Equal(t, c.visible, state.BusinessVisible)
		assert.Equal(t, c.visible, len(state.Options) == 3)
	}
}

func TestHiddenBusinessOptionCannotSignIn(t *testing.T) {
	cfg := fullConfig
	cfg.Business.ClientID = ""
	cfg.Business.ReturnURL = ""
	f := newFixture(t, cfg)

	state := f.ctrl.OnScreenShown(context.Background())
	assert.NotContains(t, state.Options, auth.Business)
	assert.Equal(t, []auth.AccountKind{auth.Consumer, auth.ConsumerInteractive}, state.Options)

	assert.Equal(t, OutcomeFailed, f.ctrl.SelectAccount(context.Background(), auth.Business))
	assert.Empty(t, f.providers.kinds)
	assert.Equal(t, 0, f.navigator.count())
}

func TestSecondSelectionWhileSigningInIsBusy(t *testing.T) {
	f := newFixture(t, fullConfig)
	provider := f.providers.provider
	provider.block = make(chan struct{})
	provider.started = make(chan struct{})

	first := f.ctrl.SelectAccountAsync(auth.Consumer)
	<-provider.started

	assert.Equal(t, OutcomeBusy, f.ctrl.SelectAccount(context.Background(), auth.ConsumerInteractive))

	close(provider.block)
	assert.Equal(t, OutcomeNavigated, <-first)
	assert.Equal(t, 1, f.navigator.count())
	assert.Equal(t, []auth.AccountKind{auth.Consumer}, f.providers.kinds)
}

func TestCloseDiscardsPendingSignIn(t *testing.T) {
	f := newFixture(t, fullConfig)
	provider := f.providers.provider
	provider.block = make(chan struct{})
	provider.started = make(chan struct{})

	pending := f.ctrl.SelectAccountAsync(auth.Consumer)
	<-provider.started
	f.ctrl.Close()

	select {
	case outcome := <-pending:
		assert.Equal(t, OutcomeCancelled, outcome)
	case <-time.After(5 * time.Second):
		t.Fatal("sign-in was not cancelled")
	}
	assert.Nil(t, f.app.Session())
	assert.Equal(t, 0, f.app.NavigationStack().Len())
	assert.Equal(t, 0, f.navigator.count())
}

func TestCloseWaitsForNavigationInProgress(t *testing.T) {
	f := newFixture(t, fullConfig)
	f.navigator.entered = make(chan struct{})
	f.navigator.release = make(chan struct{})

	pending := f.ctrl.SelectAccountAsync(auth.Consumer)
	<-f.navigator.entered

	closed := make(chan struct{})
	go func() {
		f.ctrl.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while the main screen was being opened")
	case <-time.After(50 * time.Millisecond):
	}

	close(f.navigator.release)
	assert.Equal(t, OutcomeNavigated, <-pending)
	<-closed
	assert.NotNil(t, f.app.Session())
	assert.Equal(t, 1, f.app.NavigationStack().Len())
}

func TestClosedScreenDoesNotNavigate(t *testing.T) {
	f := newFixture(t, fullConfig)
	require.NoError(t, f.app.SetSession(&session.ClientSession{Kind: auth.Consumer}))
	f.ctrl.Close()

	assert.Equal(t, OutcomeCancelled, f.ctrl.SelectAccount(context.Background(), auth.Consumer))
	assert.Equal(t, 0, f.navigator.count())

	f.app.ClearSession()
	assert.Equal(t, OutcomeCancelled, f.ctrl.SelectAccount(context.Background(), auth.Consumer))
	assert.Nil(t, f.app.Session())
	assert.Equal(t, 0, f.app.NavigationStack().Len())
	assert.Equal(t, 0, f.navigator.count())
}

func TestLoginTimeout(t *testing.T) {
	cfg := fullConfig
	cfg.LoginTimeout = 10 * time.Millisecond
	f := newFixture(t, cfg)
	provider := f.providers.provider
	provider.block = make(chan struct{})
	provider.authErr = auth.NewServiceError("sign-in timed out", context.DeadlineExceeded)

	assert.Equal(t, OutcomeFailed, f.ctrl.SelectAccount(context.Background(), auth.Consumer))
	assert.Nil(t, f.app.Session())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "navigated", OutcomeNavigated.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
