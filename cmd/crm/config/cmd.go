// Package configcmd implements the `crm config` command group.
package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
	"github.com/go-ports/stratocrm/internal/config"
)

const configTemplate = `# StratoCRM configuration
# Any key can be overridden with an environment variable, e.g.
# STRATOCRM_SMTP_PASSWORD overrides smtp.password. A .env file in the
# working directory is loaded at startup.

smtp:
  host: smtp.gmail.com
  port: 587                     # submission port
  username: ""                  # login, also the sender when "from" is empty
  # password: ...              # prefer STRATOCRM_SMTP_PASSWORD
  from: ""
  from_name: StratoCRM
  starttls: true                # upgrade to TLS before authenticating
  timeout: 30s

log:
  level: warn                   # debug | info | warn | error
  format: console               # console | json
`

// Command implements `crm config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		newConfigInit(ctx),
		newSetHome(),
		newClearHome(),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	home, source := config.ResolveHome()
	if c.ctx.Home != "" {
		home = c.ctx.Home
		source = "flag"
	}
	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	if err != nil {
		return err
	}
	data := map[string]any{
		"smtp": map[string]any{
			"host":      cfg.SMTP.Host,
			"port":      cfg.SMTP.Port,
			"username":  cfg.SMTP.Username,
			"password":  redact(cfg.SMTP.Password),
			"from":      cfg.SMTP.Sender(),
			"from_name": cfg.SMTP.FromName,
			"starttls":  cfg.SMTP.StartTLS,
			"timeout":   cfg.SMTP.Timeout.String(),
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"home":        home,
		"home_source": source,
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(b))
	return nil
}

// ---------------------------------------------------------------------------
// config init
// ---------------------------------------------------------------------------

func newConfigInit(ctx *shared.Context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a starter config.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := ctx.ResolvedHome()
			cfgPath := filepath.Join(home, "config.yaml")
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfgPath); err == nil && !force {
				fmt.Fprintf(out, "Config already exists at %s\n", cfgPath)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}
			if err := os.MkdirAll(home, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(cfgPath, []byte(configTemplate), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", cfgPath)
			fmt.Fprintln(out, "Edit the file to configure your SMTP server.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

// ---------------------------------------------------------------------------
// config set-home / clear-home
// ---------------------------------------------------------------------------

func newSetHome() *cobra.Command {
	return &cobra.Command{
		Use:   "set-home <path>",
		Short: "Persist CRM home location (used when CRM_HOME is unset)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := config.SetPersistedHome(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Join(resolved, "customers"), 0o755); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persisted CRM home: %s\n", resolved)
			fmt.Fprintln(out, "Override anytime with CRM_HOME.")
			return nil
		},
	}
}

func newClearHome() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-home",
		Short: "Remove persisted CRM home location from global config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := config.ClearPersistedHome()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if changed {
				fmt.Fprintln(out, "Cleared persisted CRM home setting.")
			} else {
				fmt.Fprintln(out, "No persisted CRM home setting was found.")
			}
			return nil
		},
	}
}

func redact(secret string) string {
	if secret != "" {
		return "<redacted>"
	}
	return ""
}
