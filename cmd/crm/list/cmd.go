// Package listcmd implements the `crm list` command.
package listcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
)

// Command implements `crm list`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	limit int
}

// New creates the list command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "list",
		Short: "List customer records by account number",
		RunE:  c.run,
	}
	c.cmd.Flags().IntVar(&c.limit, "limit", 0, "Maximum number of customers to show (0 = all)")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	recs, err := svc.ListCustomers()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No customers found.")
		return nil
	}

	limit := len(recs)
	if c.limit > 0 && c.limit < limit {
		limit = c.limit
	}
	fmt.Fprintf(out, "\nCustomers (%d of %d):\n", limit, len(recs))
	for _, r := range recs[:limit] {
		fmt.Fprintf(out, "  %s | %s | %s | %s | %d notes\n", r.AccountNumber, r.Name, r.Email, r.Phone, len(r.Notes))
	}
	return nil
}
