package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/templui/calldesk/internal/callfilter"
	"github.com/templui/calldesk/internal/client"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/render"
)

func newCallsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Call log commands",
	}
	cmd.AddCommand(newCallsListCmd(app))
	cmd.AddCommand(newCallsShowCmd(app))
	cmd.AddCommand(newCallsCreateCmd(app))
	cmd.AddCommand(newCallsStatusCmd(app))
	cmd.AddCommand(newCallsDeleteCmd(app))
	cmd.AddCommand(newCallsCommentCmd(app))
	cmd.AddCommand(newCallsStatsCmd(app))
	return cmd
}

func newCallsListCmd(app *App) *cobra.Command {
	var criteria callfilter.Criteria

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calls, filtered locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := criteria.Validate()
			if err != nil {
				return err
			}

			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}

			now := app.now()
			calls := callfilter.Apply(s.Calls, criteria, now)
			if app.JSON {
				return writeJSON(cmd, calls)
			}

			// Cards always count the whole log, not the filtered view
			writeLine(cmd, render.StatusCards(callfilter.Counts(s.Calls)))
			writeLine(cmd, render.CallTable(calls, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.Search, "search", "", "Match caller name, number or note")
	cmd.Flags().StringVar(&criteria.DateRange, "range", callfilter.RangeAllTime, "Date range: "+strings.Join(callfilter.DateRanges, ", "))
	cmd.Flags().StringVar(&criteria.Status, "status", "", "Only calls with this status")
	cmd.Flags().StringVar(&criteria.Priority, "priority", "", "Only calls with this priority")
	cmd.Flags().StringVar(&criteria.Quick, "quick", "", "Quick filter: "+strings.Join(callfilter.QuickFilters, ", "))
	return cmd
}

func newCallsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <call-id>",
		Short: "Show a call with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			call, ok := s.Call(args[0])
			if !ok {
				return fmt.Errorf("call not found: %s", args[0])
			}
			if app.JSON {
				return writeJSON(cmd, call)
			}
			writeLine(cmd, render.CallDetail(call, app.now()))
			return nil
		},
	}
}

func newCallsCreateCmd(app *App) *cobra.Command {
	var in client.CreateCall

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a new call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.ValidPriority(in.Priority) {
				return fmt.Errorf("priority must be one of %s", strings.Join(model.Priorities, ", "))
			}

			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			call, err := s.CreateCall(cmd.Context(), in)
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, call)
			}
			writeLine(cmd, "Logged call "+call.ID)
			writeLine(cmd, render.StatusCards(callfilter.Counts(s.Calls)))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.CallerName, "caller-name", "", "Caller name")
	cmd.Flags().StringVar(&in.CallerNumber, "caller-number", "", "Caller phone number")
	cmd.Flags().StringVar(&in.PersonToContact, "contact", "", "Person to contact")
	cmd.Flags().StringVar(&in.OperatorName, "operator", "", "Operator who took the call")
	cmd.Flags().StringVar(&in.Priority, "priority", model.PriorityMedium, "Priority: "+strings.Join(model.Priorities, ", "))
	cmd.Flags().StringVar(&in.Note, "note", "", "Optional note")
	cmd.Flags().StringVar(&in.FollowUpDate, "follow-up", "", "Optional follow-up date (YYYY-MM-DD or RFC 3339)")
	for _, f := range []string{"caller-name", "caller-number", "contact", "operator"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newCallsStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <call-id> <status>",
		Short: "Change a call's status",
		Long:  "Change a call's status. Valid statuses: " + strings.Join(model.CallStatuses, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := args[1]
			if !model.ValidCallStatus(status) {
				return fmt.Errorf("status must be one of %s", strings.Join(model.CallStatuses, ", "))
			}

			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			callID := resolveCallID(s, args[0])

			call, err := s.UpdateStatus(cmd.Context(), callID, status)
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, call)
			}
			writeLine(cmd, fmt.Sprintf("%s is now %s", call.CallerName, render.Status(call.Status)))
			return nil
		},
	}
}

func newCallsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <call-id>",
		Short: "Delete a call with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			callID := resolveCallID(s, args[0])

			err = s.DeleteCall(cmd.Context(), callID)
			if err != nil {
				return explain(err)
			}
			writeLine(cmd, "Call deleted")
			return nil
		},
	}
}

func newCallsCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <call-id> <text>",
		Short: "Add a comment to a call",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			callID := resolveCallID(s, args[0])

			comment, err := s.AddComment(cmd.Context(), callID, strings.Join(args[1:], " "))
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, comment)
			}
			writeLine(cmd, "Added comment "+comment.ID)
			return nil
		},
	}
}

func newCallsStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show call counts per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.client().Stats(cmd.Context())
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, stats)
			}
			writeLine(cmd, render.StatusCards(*stats))
			return nil
		},
	}
}

// resolveCallID expands a unique id prefix using the session's local copy.
func resolveCallID(s *client.Session, arg string) string {
	if call, ok := s.Call(arg); ok {
		return call.ID
	}
	return arg
}
