// Package createcmd implements the `crm create` command.
package createcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
)

// Command implements `crm create`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	name  string
	email string
	phone string
}

// New creates the create command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "create",
		Short: "Create a customer record and print its account number",
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.StringVar(&c.name, "name", "", "Customer name (required)")
	f.StringVar(&c.email, "email", "", "Customer email (required)")
	f.StringVar(&c.phone, "phone", "", "Customer phone (required)")

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

	acct, err := svc.CreateCustomer(c.name, c.email, c.phone)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Customer created successfully!")
	fmt.Fprintf(out, "Account Number: %s\n", acct)
	return nil
}
