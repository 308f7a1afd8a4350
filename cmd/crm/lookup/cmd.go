// Package lookupcmd implements the `crm lookup` command.
package lookupcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
	"github.com/go-ports/stratocrm/internal/render"
)

// Command implements `crm lookup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	format string
}

// New creates the lookup command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "lookup <account-number>",
		Short: "Show a customer record by account number",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.format, "format", render.FormatText, "Output format: text, json, markdown")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	rec, err := svc.LookupCustomer(args[0])
	if err != nil {
		return err
	}
	out, err := render.Render(rec, c.format)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
