package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/render"
)

type lookupCommand struct {
	use   string
	kind  string
	label string
}

var (
	lookupContacts  = lookupCommand{use: "contacts", kind: model.LookupContactPerson, label: "contact person"}
	lookupOperators = lookupCommand{use: "operators", kind: model.LookupOperator, label: "operator"}
)

func newLookupCmd(app *App, lc lookupCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   lc.use,
		Short: "Manage your " + lc.label + " list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a " + lc.label,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := s.AddLookup(cmd.Context(), lc.kind, strings.Join(args, " "))
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, entry)
			}
			writeLine(cmd, fmt.Sprintf("Added %s %q", lc.label, entry.Name))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a " + lc.label,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			err = s.DeleteLookup(cmd.Context(), lc.kind, name)
			if err != nil {
				return explain(err)
			}
			writeLine(cmd, fmt.Sprintf("Removed %s %q", lc.label, name))
			return nil
		},
	})

	return cmd
}

func newOptionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show contact persons and operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := app.client().DropdownOptions(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, options)
			}
			writeLine(cmd, render.Options(options))
			return nil
		},
	}
}
