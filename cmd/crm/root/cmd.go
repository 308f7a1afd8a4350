// Package rootcmd wires the root cobra.Command for the crm CLI binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/go-ports/stratocrm/cmd/crm/config"
	createcmd "github.com/go-ports/stratocrm/cmd/crm/create"
	emailcmd "github.com/go-ports/stratocrm/cmd/crm/email"
	initcmd "github.com/go-ports/stratocrm/cmd/crm/init"
	listcmd "github.com/go-ports/stratocrm/cmd/crm/list"
	lookupcmd "github.com/go-ports/stratocrm/cmd/crm/lookup"
	mcpcmd "github.com/go-ports/stratocrm/cmd/crm/mcp"
	notecmd "github.com/go-ports/stratocrm/cmd/crm/note"
	reindexcmd "github.com/go-ports/stratocrm/cmd/crm/reindex"
	searchcmd "github.com/go-ports/stratocrm/cmd/crm/search"
	"github.com/go-ports/stratocrm/cmd/crm/shared"
	statuscmd "github.com/go-ports/stratocrm/cmd/crm/status"
	"github.com/go-ports/stratocrm/internal/buildinfo"
)

// New creates and returns the root cobra.Command for the crm CLI.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "crm",
		Short:         "StratoCRM: local customer records, notes and email",
		Version:       buildinfo.Summary(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(
		&ctx.Home, "home", "",
		"Override CRM home directory (default: $CRM_HOME env → persisted config → ~/.stratocrm)",
	)
	pf.StringVar(&ctx.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	root.AddCommand(
		initcmd.New(ctx).Cmd(),
		createcmd.New(ctx).Cmd(),
		lookupcmd.New(ctx).Cmd(),
		notecmd.New(ctx).Cmd(),
		emailcmd.New(ctx).Cmd(),
		listcmd.New(ctx).Cmd(),
		searchcmd.New(ctx).Cmd(),
		reindexcmd.New(ctx).Cmd(),
		statuscmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		mcpcmd.New(ctx).Cmd(),
	)

	return root
}
