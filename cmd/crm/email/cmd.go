// Package emailcmd implements the `crm email` command.
package emailcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
	"github.com/go-ports/stratocrm/internal/models"
)

// Command implements `crm email`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	to       string
	subject  string
	body     string
	bodyFile string
}

// New creates the email command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "email",
		Short: "Send a plain-text email via the configured SMTP server",
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.StringVar(&c.to, "to", "", "Recipient address (required)")
	f.StringVar(&c.subject, "subject", "", "Subject line (required)")
	f.StringVar(&c.body, "body", "", "Message body")
	f.StringVar(&c.bodyFile, "body-file", "", "Path to a file containing the message body")

	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	if c.body != "" && c.bodyFile != "" {
		return fmt.Errorf("use either --body or --body-file, not both")
	}

	body := c.body
	if c.bodyFile != "" {
		data, err := os.ReadFile(c.bodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file %q: %w", c.bodyFile, err)
		}
		body = string(data)
	}

	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	msg := models.Email{To: c.to, Subject: c.subject, Body: body}
	if err := svc.SendEmail(cmd.Context(), msg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Email sent to %s\n", c.to)
	return nil
}
