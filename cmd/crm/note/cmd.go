// Package notecmd implements the `crm note` command.
package notecmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
)

// Command implements `crm note`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the note command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "note <account-number> <text...>",
		Short: "Append a note to a customer record",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.run,
	}
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

	if err := svc.AddNote(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Note added to %s\n", strings.TrimSpace(args[0]))
	return nil
}
