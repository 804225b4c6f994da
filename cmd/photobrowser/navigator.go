package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"lib-photo-session-go/session"
)

const (
	listTimeout  = 30 * time.Second
	maxListItems = 200
)

// consoleNavigator renders the main screen as a listing of the folder on
// top of the navigation stack.
type consoleNavigator struct {
	app *session.AppContext
	out io.Writer
}

func newConsoleNavigator(app *session.AppContext, out io.Writer) *consoleNavigator {
	return &consoleNavigator{app: app, out: out}
}

func (n *consoleNavigator) Navigate(screen session.Screen, args session.NavigationArgs) {
	if screen != session.ScreenMain {
		log.Debug("Ignoring navigation", "screen", screen)
		return
	}
	clientSession := n.app.Session()
	if clientSession == nil {
		log.Warn("Main screen requested without a session")
		return
	}
	item, ok := n.app.NavigationStack().Top()
	if !ok {
		item = session.NewRootItem()
	}
	if clientSession.Container == "" {
		log.Warn("No container configured, nothing to list", "kind", args.Kind)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()
	folders, err := clientSession.Storage.ListFolders(ctx, clientSession.Container, maxListItems, item.Path)
	if err != nil {
		log.Error("Unable to list folders", "container", clientSession.Container, "error", err)
		return
	}
	files, err := clientSession.Storage.ListFiles(ctx, clientSession.Container, maxListItems, item.Path)
	if err != nil {
		log.Error("Unable to list files", "container", clientSession.Container, "error", err)
		return
	}

	fmt.Fprintf(n.out, "%s/%s (%s)\n", clientSession.Container, item.Path, args.Kind)
	for _, folder := range folders {
		fmt.Fprintf(n.out, "  [dir] %s\n", folder)
	}
	for _, file := range files {
		fmt.Fprintf(n.out, "        %s\n", file)
	}
}
