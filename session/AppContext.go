package session

import (
	"errors"
	"sync"
)

var (
	ErrSessionActive = errors.New("a client session is already active")
	ErrNilSession    = errors.New("client session is nil")
)

// AppContext is the application-wide state shared by screens: the single
// live ClientSession and the navigation stack.
type AppContext struct {
	mu      sync.Mutex
	session *ClientSession
	stack   *NavigationStack
}

func NewAppContext() *AppContext {
	return &AppContext{stack: &NavigationStack{}}
}

// Session returns the live session, or nil when signed out.
func (a *AppContext) Session() *ClientSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SetSession installs s. A live session must be cleared first.
func (a *AppContext) SetSession(s *ClientSession) error {
	if s == nil {
		return ErrNilSession
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		return ErrSessionActive
	}
	a.session = s
	return nil
}

// ClearSession removes the live session and returns it.
func (a *AppContext) ClearSession() *ClientSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	previous := a.session
	a.session = nil
	return previous
}

func (a *AppContext) NavigationStack() *NavigationStack {
	return a.stack
}
