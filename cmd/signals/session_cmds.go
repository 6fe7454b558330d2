package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/signals-client/app"
	"github.com/jrsteele09/signals-client/credentials"
	"github.com/jrsteele09/signals-client/internal/config"
	"github.com/jrsteele09/signals-client/session"
	"github.com/jrsteele09/signals-client/token"
	"github.com/jrsteele09/signals-client/users"
)

func statusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the restored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				cfg := a.Config()
				displayAppname(cfg.GetAppName())

				state := a.Session.State()
				tier := "kvstore"
				if a.Credentials.PrimaryAvailable(ctx) {
					tier = "secure-file"
				}

				t := newTable()
				t.AppendHeader(table.Row{header("KEY"), header("VALUE")})
				t.AppendRow(table.Row{"Environment", cfg.GetEnv()})
				t.AppendRow(table.Row{"API", cfg.GetAPIBaseURL()})
				t.AppendRow(table.Row{"Credential storage", tier})
				t.AppendRow(table.Row{"Phase", state.Phase})
				t.AppendRow(table.Row{"Authenticated", yesNo(state.IsAuthenticated())})
				if identity, ok := token.ExtractIdentity(state.Token); ok {
					t.AppendRow(table.Row{"Token user", identity.UserID})
				}
				if state.User != nil {
					t.AppendRow(table.Row{"User", fmt.Sprintf("%s <%s>", state.User.Nickname, state.User.Email)})
					t.AppendRow(table.Row{"Provider", state.User.AuthProvider})
					t.AppendRow(table.Row{"Role", state.User.Role})
				}
				t.Render()
				return nil
			})
		},
	}
}

func loginCmd(opts *rootOptions) *cobra.Command {
	var rawToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Session.Login(ctx, rawToken); err != nil {
					var invalid *session.InvalidTokenError
					if errors.As(err, &invalid) {
						return fmt.Errorf("the token is invalid or expired: %w", err)
					}
					return err
				}
				success("Logged in as %s", a.Session.State().User.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rawToken, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func logoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				a.Session.Logout(ctx)
				success("Logged out")
				return nil
			})
		},
	}
}

func refreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if !a.Session.State().HasToken() {
					warn("Not logged in, nothing to refresh")
					return nil
				}
				if err := a.Session.RefreshToken(ctx); err != nil {
					return err
				}
				success("Token refreshed")
				return nil
			})
		},
	}
}

func magicLinkCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "magic-link <email>",
		Short: "Email a login link and wait for it to be used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				s.Suffix = " Waiting for the magic link to be confirmed..."
				s.Writer = os.Stderr
				s.Start()
				user, err := a.SendMagicLink(ctx, args[0])
				s.Stop()

				if errors.Is(err, context.DeadlineExceeded) {
					return fmt.Errorf("magic link not confirmed within %s", timeout)
				}
				if err != nil {
					return err
				}
				success("Confirmed as %s", user.Email)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for confirmation")
	return cmd
}

func oauthURLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "oauth-url <google|kakao|apple>",
		Short: "Print the URL that starts an OAuth login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				u, err := a.OAuthURL(users.AuthProvider(args[0]))
				if err != nil {
					return err
				}
				fmt.Println(u)
				return nil
			})
		},
	}
}

func initKeyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-key",
		Short: "Create the key file that enables encrypted credential storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			created, err := credentials.EnsureKeyFile(cfg.GetSecureKeyFile())
			if err != nil {
				return err
			}
			if created {
				success("Created %s", cfg.GetSecureKeyFile())
			} else {
				info("%s already exists", cfg.GetSecureKeyFile())
			}
			return nil
		},
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(s string) string {
	return text.FgHiCyan.Sprint(s)
}

func yesNo(b bool) string {
	if b {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgYellow.Sprint("no")
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", text.FgGreen.Sprint("✓"), fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", text.FgYellow.Sprint("⚠"), fmt.Sprintf(format, args...))
}
