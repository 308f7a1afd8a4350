// Package statuscmd implements the `crm status` command.
package statuscmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/stratocrm/cmd/crm/shared"
)

// Command implements `crm status`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	recent int
}

// New creates the status command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "status",
		Short: "Show record and search index counts",
		RunE:  c.run,
	}
	c.cmd.Flags().IntVar(&c.recent, "recent", 5, "Number of recently indexed customers to show")
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

	st, err := svc.Status(c.recent)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Home:      %s\n", svc.Home)
	fmt.Fprintf(out, "Records:   %d\n", st.Records)
	fmt.Fprintf(out, "Indexed:   %d\n", st.Indexed)
	if st.LastReindex.IsZero() {
		fmt.Fprintln(out, "Reindexed: never")
	} else {
		fmt.Fprintf(out, "Reindexed: %s\n", st.LastReindex.Local().Format("2006-01-02 15:04"))
	}
	if st.Stale() {
		fmt.Fprintln(out, "Index is out of date; run 'crm reindex'.")
	}

	if len(st.Recent) > 0 {
		fmt.Fprintln(out, "\nRecently updated:")
		for _, r := range st.Recent {
			fmt.Fprintf(out, "  %s | %s | %d notes\n", r.AccountNumber, r.Name, r.NoteCount)
		}
	}
	return nil
}
