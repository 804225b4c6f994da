package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// AuthProvider signs a user in for one AccountKind and hands out the
// resulting token credential.
type AuthProvider interface {
	Kind() AccountKind
	// Authenticate always runs a fresh interactive sign-in against baseURL.
	Authenticate(ctx context.Context, baseURL string) error
	// RestoreCachedOrAuthenticate silently restores the most recent cached
	// account and falls back to an interactive sign-in when that fails.
	RestoreCachedOrAuthenticate(ctx context.Context) error
	SignOut(ctx context.Context) error
	// Credential is nil until a sign-in succeeds and after SignOut.
	Credential() azcore.TokenCredential
}

// ServiceError is the only failure an AuthProvider reports. Network,
// credential and cancellation failures are all folded into it.
type ServiceError struct {
	Message       string
	internalError error
}

func (err *ServiceError) Error() string {
	if err.internalError != nil {
		return fmt.Sprintf("Service Error: %s: %s", err.Message, err.internalError.Error())
	}
	return fmt.Sprintf("Service Error: %s", err.Message)
}

func (err *ServiceError) Unwrap() error {
	return err.internalError
}

func wrapServiceError(msg string, err error) *ServiceError {
	return &ServiceError{Message: msg, internalError: err}
}

// NewServiceError lets collaborators outside this package fold their
// failures into a ServiceError.
func NewServiceError(msg string, err error) *ServiceError {
	return wrapServiceError(msg, err)
}

// ResourceScope is the ".default" scope of the resource at baseURL.
func ResourceScope(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/.default"
}
