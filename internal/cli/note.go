package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage voice notes",
	}

	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteGetCmd())
	cmd.AddCommand(newNoteUploadCmd())
	cmd.AddCommand(newNoteRenameCmd())
	cmd.AddCommand(newNoteDeleteCmd())
	cmd.AddCommand(newNoteTranscribeCmd())

	return cmd
}

func newNoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List voice notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := apiClient.ListRecordings(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(recs)
			}

			table := NewTable("ID", "NAME", "SIZE", "TRANSCRIPT", "CREATED")
			for _, r := range recs {
				transcript := "-"
				if r.Transcript != "" {
					transcript = truncate(r.Transcript, 40)
				}
				table.AddRow(
					truncate(r.ID, 12),
					truncate(r.Name, 30),
					fmt.Sprintf("%d KB", r.SizeBytes/1024),
					transcript,
					r.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newNoteGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.GetRecording(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get note: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(rec)
			}

			fmt.Printf("ID:        %s\n", rec.ID)
			fmt.Printf("Name:      %s\n", rec.Name)
			fmt.Printf("Size:      %d bytes\n", rec.SizeBytes)
			fmt.Printf("Created:   %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
			if rec.Transcript != "" {
				fmt.Printf("Transcript:\n%s\n", rec.Transcript)
			}
			return nil
		},
	}
}

func newNoteUploadCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload an audio file as a new voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open audio file: %w", err)
			}
			defer f.Close()

			if name == "" {
				name = filepath.Base(args[0])
			}

			rec, err := apiClient.UploadRecording(context.Background(), name, filepath.Base(args[0]), f)
			if err != nil {
				return fmt.Errorf("upload failed: %w", err)
			}

			fmt.Printf("Uploaded %s (%s)\n", rec.Name, rec.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to file name)")

	return cmd
}

func newNoteRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a voice note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.RenameRecording(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("rename failed: %w", err)
			}
			fmt.Printf("Renamed to %s\n", rec.Name)
			return nil
		},
	}
}

func newNoteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a voice note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.DeleteRecording(context.Background(), args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			fmt.Println("Note deleted")
			return nil
		},
	}
}

func newNoteTranscribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <id>",
		Short: "Transcribe a voice note (spends one AI credit unless Pro)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := apiClient.TranscribeRecording(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}
			fmt.Println(rec.Transcript)
			return nil
		},
	}
}
