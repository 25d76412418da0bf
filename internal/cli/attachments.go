package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/calldesk/internal/render"
)

func newAttachmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachments",
		Short: "Comment attachment commands",
	}
	cmd.AddCommand(newAttachmentsUploadCmd(app))
	cmd.AddCommand(newAttachmentsListCmd(app))
	cmd.AddCommand(newAttachmentsDeleteCmd(app))
	return cmd
}

func newAttachmentsUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <comment-id> <file>",
		Short: "Attach a file (max 10 MB) to a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}

			attachment, err := s.UploadAttachment(cmd.Context(), args[0], args[1], f)
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, attachment)
			}
			writeLine(cmd, fmt.Sprintf("Uploaded %s (%s) as %s", attachment.FileName, render.FileSize(attachment.FileSize), attachment.FileURL))
			return nil
		},
	}
}

func newAttachmentsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <comment-id>",
		Short: "List a comment's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attachments, err := app.client().Attachments(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			if app.JSON {
				return writeJSON(cmd, attachments)
			}
			writeLine(cmd, render.AttachmentTable(attachments))
			return nil
		},
	}
}

func newAttachmentsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <attachment-id>",
		Short: "Delete an attachment and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			err = s.DeleteAttachment(cmd.Context(), args[0])
			if err != nil {
				return explain(err)
			}
			writeLine(cmd, "Attachment deleted")
			return nil
		},
	}
}
