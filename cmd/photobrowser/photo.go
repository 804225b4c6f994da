package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"lib-photo-session-go/session"
	"lib-photo-session-go/storage"
)

var (
	errNotSignedIn = errors.New("not signed in")
	errNoContainer = errors.New("no container configured")
)

// quietNavigator opens the main screen without rendering it.
type quietNavigator struct{}

func (quietNavigator) Navigate(screen session.Screen, args session.NavigationArgs) {
	log.Debug("Opened screen", "screen", screen, "kind", args.Kind, "reused", args.Reused)
}

// fetchPhoto writes a photo of the signed-in library to w. With stream set
// the content is copied as it arrives, otherwise it is downloaded whole
// first.
func fetchPhoto(ctx context.Context, clientSession *session.ClientSession, name string, w io.Writer, stream bool) error {
	if clientSession == nil {
		return errNotSignedIn
	}
	if clientSession.Container == "" {
		return errNoContainer
	}

	if stream {
		body, err := clientSession.Storage.GetFileContentAsInputStream(ctx, clientSession.Container, name)
		if err != nil {
			return err
		}
		defer body.Close()
		n, err := io.Copy(w, body)
		if err != nil {
			return fmt.Errorf("unable to copy %s: %w", name, err)
		}
		log.Debug("Streamed photo", "name", name, "bytes", n)
		return nil
	}

	file, err := clientSession.Storage.GetFile(ctx, clientSession.Container, name)
	if err != nil {
		return err
	}
	log.Debug("Downloaded photo", "name", name,
		"type", file.Metadata[storage.MetadataContentType],
		"modified", file.Metadata[storage.MetadataLastModified],
		"bytes", len(file.Content))
	if _, err := w.Write(file.Content); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	return nil
}
