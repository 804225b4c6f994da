package session

import "lib-photo-session-go/auth"

type Screen string

const (
	ScreenAccountSelection Screen = "account_selection"
	ScreenMain             Screen = "main"
)

// NavigationArgs travel with a screen transition.
type NavigationArgs struct {
	Kind   auth.AccountKind
	Reused bool
}

// SessionNavigator performs screen transitions. Navigate is fire-and-forget.
type SessionNavigator interface {
	Navigate(screen Screen, args NavigationArgs)
}
