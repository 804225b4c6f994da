package session

import (
	"time"

	"lib-photo-session-go/auth"
	"lib-photo-session-go/storage"
)

// ClientSession is a signed-in handle to the photo storage backend.
type ClientSession struct {
	Kind      auth.AccountKind
	BaseURL   string
	Container string
	Storage   storage.CloudStorageProxy
	Provider  auth.AuthProvider
	CreatedAt time.Time
}
