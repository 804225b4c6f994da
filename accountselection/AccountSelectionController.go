// Package accountselection drives the account selection screen: it revokes
// any previous session when the screen is shown, signs the user in for the
// chosen account kind and hands over to the main screen.
package accountselection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"lib-photo-session-go/auth"
	"lib-photo-session-go/config"
	"lib-photo-session-go/metrics"
	"lib-photo-session-go/session"
)

const (
	strategyInteractive          = "interactive"
	strategyRestoreOrInteractive = "restore_or_interactive"
)

var ErrBusinessNotConfigured = errors.New("business sign-in is not configured")

// Outcome is how a selection ended. Failures are never returned as errors.
type Outcome int

const (
	OutcomeNavigated Outcome = iota
	OutcomeReused
	OutcomeFailed
	OutcomeBusy
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNavigated:
		return "navigated"
	case OutcomeReused:
		return "reused"
	case OutcomeFailed:
		return "failed"
	case OutcomeBusy:
		return "busy"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ScreenState lists the account options the screen offers.
type ScreenState struct {
	Options         []auth.AccountKind
	BusinessVisible bool
}

// BusinessOptionVisible reports whether the Business option is offered.
func BusinessOptionVisible(cfg config.AppConfig) bool {
	return cfg.BusinessConfigured()
}

type Controller struct {
	app       *session.AppContext
	cfg       config.AppConfig
	providers auth.AuthProviderFactory
	clients   session.StorageClientFactory
	navigator session.SessionNavigator
	logger    *log.Logger
	metrics   metrics.LoginMetrics

	lifetime      context.Context
	close         context.CancelFunc
	loginInFlight atomic.Bool

	// closeMu orders Close against session commits and navigation.
	closeMu sync.Mutex
	closed  bool
}

type Option func(*Controller)

// WithLogger sets the diagnostic sink for swallowed sign-in failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m metrics.LoginMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func NewController(app *session.AppContext, cfg config.AppConfig, providers auth.AuthProviderFactory,
	clients session.StorageClientFactory, navigator session.SessionNavigator, opts ...Option) *Controller {
	c := &Controller{
		app:       app,
		cfg:       cfg,
		providers: providers,
		clients:   clients,
		navigator: navigator,
		logger:    log.Default(),
		metrics:   metrics.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lifetime, c.close = context.WithCancel(context.Background())
	return c
}

// OnScreenShown revokes the live session, if any, and returns the options to
// offer. The session is cleared even when the provider fails to sign out.
func (c *Controller) OnScreenShown(ctx context.Context) ScreenState {
	if previous := c.app.Session(); previous != nil {
		if previous.Provider != nil {
			if err := previous.Provider.SignOut(ctx); err != nil {
				c.logger.Debug("Sign-out failed, dropping session anyway", "kind", previous.Kind, "error", err)
			}
		}
		c.app.ClearSession()
		c.metrics.RecordSignOut(previous.Kind.String())
		c.logger.Debug("Signed out", "kind", previous.Kind)
	}

	state := ScreenState{BusinessVisible: BusinessOptionVisible(c.cfg)}
	for _, kind := range auth.AccountKinds {
		if kind == auth.Business && !state.BusinessVisible {
			continue
		}
		state.Options = append(state.Options, kind)
	}
	return state
}

// SelectAccount signs in for kind and navigates to the main screen. A live
// session is reused without signing in again. It blocks until the sign-in
// finishes, ctx is done or the screen is closed.
func (c *Controller) SelectAccount(ctx context.Context, kind auth.AccountKind) Outcome {
	if outcome, reused := c.reuseSession(kind); reused {
		return outcome
	}

	if !c.loginInFlight.CompareAndSwap(false, true) {
		c.logger.Debug("Sign-in already in progress, ignoring selection", "kind", kind)
		return OutcomeBusy
	}
	defer c.loginInFlight.Store(false)

	loginCtx, cancel := c.loginContext(ctx)
	defer cancel()

	start := time.Now()
	clientSession, err := c.login(loginCtx, kind)
	return c.commit(kind, clientSession, err, start)
}

func (c *Controller) reuseSession(kind auth.AccountKind) (Outcome, bool) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.app.Session() == nil {
		return 0, false
	}
	if c.closed {
		return OutcomeCancelled, true
	}
	c.metrics.RecordSessionReuse(kind.String())
	c.navigator.Navigate(session.ScreenMain, session.NavigationArgs{Kind: kind, Reused: true})
	return OutcomeReused, true
}

// commit stores the session and navigates unless the screen has been closed.
// Close waits for a commit in progress to finish.
func (c *Controller) commit(kind auth.AccountKind, clientSession *session.ClientSession, err error, start time.Time) Outcome {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed || c.lifetime.Err() != nil {
		c.logger.Debug("Screen closed during sign-in, discarding result", "kind", kind)
		return OutcomeCancelled
	}
	if err == nil {
		err = c.app.SetSession(clientSession)
	}
	if err != nil {
		c.reportFailure(kind, err)
		return OutcomeFailed
	}

	c.metrics.RecordLoginLatency(time.Since(start))
	c.app.NavigationStack().Push(session.NewRootItem())
	c.navigator.Navigate(session.ScreenMain, session.NavigationArgs{Kind: kind})
	return OutcomeNavigated
}

// SelectAccountAsync runs SelectAccount for the lifetime of the screen. The
// channel receives exactly one Outcome.
func (c *Controller) SelectAccountAsync(kind auth.AccountKind) <-chan Outcome {
	result := make(chan Outcome, 1)
	go func() {
		result <- c.SelectAccount(c.lifetime, kind)
	}()
	return result
}

// Close tears the screen down. A pending sign-in is cancelled and its result
// ignored.
func (c *Controller) Close() {
	c.close()
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()
}

func (c *Controller) loginContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.lifetime, cancel)
	if c.cfg.LoginTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.cfg.LoginTimeout)
		return ctx, func() {
			cancelTimeout()
			stop()
			cancel()
		}
	}
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) login(ctx context.Context, kind auth.AccountKind) (*session.ClientSession, error) {
	if kind == auth.Business && !BusinessOptionVisible(c.cfg) {
		return nil, auth.NewServiceError("business account option is hidden", ErrBusinessNotConfigured)
	}
	provider, err := c.providers.NewProvider(kind, c.cfg)
	if err != nil {
		return nil, err
	}
	baseURL := auth.ConfigFor(kind, c.cfg).BaseURL

	switch kind {
	case auth.Business:
		c.metrics.RecordLoginAttempt(kind.String(), strategyInteractive)
		err = provider.Authenticate(ctx, baseURL)
	case auth.Consumer, auth.ConsumerInteractive:
		c.metrics.RecordLoginAttempt(kind.String(), strategyRestoreOrInteractive)
		err = provider.RestoreCachedOrAuthenticate(ctx)
	default:
		return nil, auth.NewServiceError("unsupported account kind "+kind.String(), auth.ErrUnknownAccountKind)
	}
	if err != nil {
		return nil, err
	}
	return c.clients.Create(ctx, baseURL, provider)
}

func (c *Controller) reportFailure(kind auth.AccountKind, err error) {
	c.metrics.RecordLoginFailure(kind.String())
	message := err.Error()
	var serviceError *auth.ServiceError
	if errors.As(err, &serviceError) {
		message = serviceError.Message
	}
	c.logger.Debug("Sign-in failed", "kind", kind, "message", message, "error", err)
}
