package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lib-photo-session-go/accountselection"
	"lib-photo-session-go/auth"
	"lib-photo-session-go/config"
	"lib-photo-session-go/metrics"
	"lib-photo-session-go/session"
)

type rootOptions struct {
	envFile        string
	logLevel       string
	metricsFile    string
	resolveSecrets bool
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "photobrowser",
		Short:        "Sign in to a photo library and browse its root folder",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "file merged into the environment before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write sign-in metrics in Prometheus text format to this file on exit")
	cmd.PersistentFlags().BoolVar(&opts.resolveSecrets, "resolve-secrets", true, "resolve keyvault:// and secretsmanager:// configuration values")

	cmd.AddCommand(newOptionsCommand(opts), newSelectCommand(opts), newGetCommand(opts), newSignOutCommand(opts))
	return cmd
}

type application struct {
	cfg         config.AppConfig
	appContext  *session.AppContext
	providers   *auth.CloudAuthProviderFactory
	ctrl        *accountselection.Controller
	registry    *prometheus.Registry
	metricsFile string
}

// newApplication wires the account selection screen. With listing set the
// main screen lists the root folder; otherwise it opens silently.
func newApplication(ctx context.Context, opts *rootOptions, out io.Writer, listing bool) (*application, error) {
	var resolver config.SecretResolver
	if opts.resolveSecrets {
		resolver = config.NewCloudSecretResolver(nil)
	}
	cfg, err := config.Load(ctx, opts.envFile, resolver)
	if err != nil {
		return nil, err
	}
	providers, err := auth.NewCloudAuthProviderFactory(cfg.CacheDir, devicePrompt(out))
	if err != nil {
		return nil, err
	}

	appContext := session.NewAppContext()
	var navigator session.SessionNavigator = quietNavigator{}
	if listing {
		navigator = newConsoleNavigator(appContext, out)
	}
	registry := prometheus.NewRegistry()
	ctrl := accountselection.NewController(appContext, cfg, providers,
		session.NewCloudStorageClientFactory(cfg.Storage),
		navigator,
		accountselection.WithMetrics(metrics.NewCollector(registry)))

	return &application{
		cfg:         cfg,
		appContext:  appContext,
		providers:   providers,
		ctrl:        ctrl,
		registry:    registry,
		metricsFile: opts.metricsFile,
	}, nil
}

func (a *application) close() {
	a.ctrl.Close()
	if a.metricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		log.Error("Unable to write metrics", "path", a.metricsFile, "error", err)
	}
}

func devicePrompt(out io.Writer) auth.DeviceCodePrompt {
	return func(_ context.Context, message azidentity.DeviceCodeMessage) error {
		_, err := fmt.Fprintln(out, message.Message)
		return err
	}
}

func newOptionsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the account kinds that can be selected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApplication(cmd.Context(), opts, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer app.close()
			state := app.ctrl.OnScreenShown(cmd.Context())
			for _, kind := range state.Options {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
			}
			return nil
		},
	}
}

func newSelectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <kind>",
		Short: "Sign in with an account kind and open the photo library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := auth.ParseAccountKind(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, opts, cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			defer app.close()
			return app.signIn(ctx, kind)
		},
	}
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	var output string
	var stream bool
	cmd := &cobra.Command{
		Use:   "get <kind> <path>",
		Short: "Sign in with an account kind and download a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := auth.ParseAccountKind(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, opts, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer app.close()
			if err := app.signIn(ctx, kind); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return fetchPhoto(ctx, app.appContext.Session(), args[1], w, stream)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write the photo to, - for standard output")
	cmd.Flags().BoolVar(&stream, "stream", false, "copy the photo as it arrives instead of downloading it first")
	return cmd
}

// signIn shows the account selection screen and selects kind on it.
// Interrupting the command closes the screen.
func (a *application) signIn(ctx context.Context, kind auth.AccountKind) error {
	state := a.ctrl.OnScreenShown(ctx)
	if kind == auth.Business && !state.BusinessVisible {
		return fmt.Errorf("%s accounts are not configured", kind)
	}

	pending := a.ctrl.SelectAccountAsync(kind)
	var outcome accountselection.Outcome
	select {
	case outcome = <-pending:
	case <-ctx.Done():
		a.ctrl.Close()
		outcome = <-pending
	}
	log.Debug("Account selection finished", "kind", kind, "outcome", outcome)
	switch outcome {
	case accountselection.OutcomeNavigated, accountselection.OutcomeReused:
		return nil
	default:
		return fmt.Errorf("sign-in %s", outcome)
	}
}

func newSignOutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout <kind>",
		Short: "Forget the cached account of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := auth.ParseAccountKind(args[0])
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), opts, cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			defer app.close()
			provider, err := app.providers.NewProvider(kind, app.cfg)
			if err != nil {
				return err
			}
			return provider.SignOut(cmd.Context())
		},
	}
}
