package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"foodreel/internal/backend"
	"foodreel/internal/gateway"
	"foodreel/internal/platform/config"
	"foodreel/internal/platform/logger"
	"foodreel/internal/session"
	"foodreel/internal/storage"
)

type options struct {
	storage     string
	storagePath string
	apiURL      string
	jsonOut     bool
	verbose     bool
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sessionctl",
		Short: "Inspect and manage the foodreel client session",
		Long: `Inspect and manage the session persisted by the foodreel shell.

Examples:
  sessionctl status                          # Show flag and role
  sessionctl login --email a@b.c --password x
  sessionctl login --role restaurant --token <jwt>
  sessionctl logout
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.storage, "storage", "", "Storage backend (file, memory, redis)")
	cmd.PersistentFlags().StringVar(&opts.storagePath, "storage-path", "", "Session file for the file backend")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", "", "Backend base URL")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log gateway and session activity to stderr")

	cmd.AddCommand(statusCmd(opts), loginCmd(opts), logoutCmd(opts))
	return cmd
}

// env is everything a subcommand needs, opened from config plus flag overrides.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	holder *session.Holder
	close  func() error
}

func (o *options) open(ctx context.Context, stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.storage != "" {
		cfg.Storage.Backend = o.storage
	}
	if o.storagePath != "" {
		cfg.Storage.Path = o.storagePath
	}
	if o.apiURL != "" {
		cfg.Backend.BaseURL = o.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := "error"
	if o.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(stderr, level, "text")

	store, closeStore, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	holder := session.NewHolder(store, log)
	holder.Initialize(ctx)
	return &env{cfg: cfg, log: log, holder: holder, close: closeStore}, nil
}

type statusOutput struct {
	Flag    string `json:"flag"`
	Role    string `json:"role,omitempty"`
	Storage string `json:"storage"`
}

func (o *options) print(w io.Writer, e *env) error {
	state := e.holder.Read()
	out := statusOutput{Flag: state.Flag.String(), Role: state.Role.String(), Storage: e.cfg.Storage.Backend}
	if o.jsonOut {
		return json.NewEncoder(w).Encode(out)
	}
	role := out.Role
	if role == "" {
		role = "-"
	}
	_, err := fmt.Fprintf(w, "session: %s\nrole:    %s\nstorage: %s\n", out.Flag, role, out.Storage)
	return err
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			e, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()
			return opts.print(cmd.OutOrStdout(), e)
		},
	}
}

func loginCmd(opts *options) *cobra.Command {
	var (
		role     string
		email    string
		password string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in against the backend, or store an existing credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			r, err := session.ParseRole(role)
			if err != nil {
				return err
			}
			e, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			credential := token
			if credential == "" {
				client, err := gateway.New(e.cfg.Backend.BaseURL,
					gateway.WithTimeout(e.cfg.Backend.Timeout),
					gateway.WithCredentials(e.holder),
					gateway.WithInvalidator(e.holder),
					gateway.WithLogger(e.log),
				)
				if err != nil {
					return err
				}
				credential, err = backend.New(client).Login(ctx, r, backend.Credentials{Email: email, Password: password})
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
			}
			if err := e.holder.Login(ctx, credential, r); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), e)
		},
	}

	cmd.Flags().StringVar(&role, "role", session.RoleCustomer.String(), "Account role (customer, restaurant)")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&token, "token", "", "Store this credential instead of calling the backend")
	cmd.MarkFlagsMutuallyExclusive("token", "email")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd)
			defer stop()

			e, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.holder.Logout(ctx); err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), e)
		},
	}
}
