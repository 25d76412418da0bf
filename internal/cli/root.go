// Package cli implements the calllog terminal client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/calldesk/internal/client"
)

const defaultServerURL = "http://localhost:8090"

type App struct {
	ServerURL string
	Token     string
	JSON      bool

	// TokenPath overrides where the login token is kept (tests).
	TokenPath string
	// Now is the clock used for filtering and response times.
	Now func() time.Time
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{Now: time.Now})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "calllog",
		Short:        "Terminal client for the calldesk call log",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in once; the token is remembered
  calllog login --username alice --password secret

  # Log a call and list today's calls
  calllog calls create --caller-name "Bob" --caller-number 555-0100 --contact Carol --operator Olga --priority Urgent
  calllog calls list --range Today

  # Close it out
  calllog calls status <call-id> Completed
`),
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("CALLLOG_URL", defaultServerURL), "calldesk server URL")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("CALLLOG_TOKEN", ""), "Bearer token (default: token saved by login)")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print raw JSON instead of tables")

	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newCallsCmd(app))
	cmd.AddCommand(newAttachmentsCmd(app))
	cmd.AddCommand(newLookupCmd(app, lookupContacts))
	cmd.AddCommand(newLookupCmd(app, lookupOperators))
	cmd.AddCommand(newOptionsCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (app *App) tokenPath() (string, error) {
	if app.TokenPath != "" {
		return app.TokenPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config dir: %w", err)
	}
	return filepath.Join(dir, "calldesk", "token"), nil
}

func (app *App) saveToken(token string) error {
	p, err := app.tokenPath()
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(p), 0700)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token+"\n"), 0600)
}

func (app *App) loadToken() string {
	if app.Token != "" {
		return app.Token
	}
	p, err := app.tokenPath()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (app *App) client() *client.Client {
	return client.New(app.ServerURL, app.loadToken())
}

// session returns a client session with calls and lookup lists loaded.
func (app *App) session(ctx context.Context) (*client.Session, error) {
	s := client.NewSession(app.client())
	err := s.Load(ctx)
	if err != nil {
		return nil, explain(err)
	}
	return s, nil
}

// explain adds a login hint to 401s.
func explain(err error) error {
	if client.IsUnauthorized(err) {
		return fmt.Errorf("%w; run `calllog login` first", err)
	}
	return err
}

func (app *App) now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return time.Now()
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLine(cmd *cobra.Command, s string) {
	fmt.Fprintln(cmd.OutOrStdout(), s)
}
