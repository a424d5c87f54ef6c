package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unowned-ai/geonote/pkg/device"
	"github.com/unowned-ai/geonote/pkg/export"
	"github.com/unowned-ai/geonote/pkg/notes"
	"github.com/unowned-ai/geonote/pkg/viewmodel"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes",
	Long:  `Create, list, edit, archive and delete notes.`,
}

var createNoteCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new note",
	Long: `Create a note with a title and a body. Location, tags and a photo are optional.
--here asks the configured location command for a fix; when that fails the note
is still saved, without a location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveNoteFromFlags(cmd, 0)
	},
}

var editNoteCmd = &cobra.Command{
	Use:   "edit [note-id]",
	Short: "Edit an existing note",
	Long:  `Replace the given fields of a note. Fields without a flag keep their value. Editing un-archives the note.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		return saveNoteFromFlags(cmd, id)
	},
}

func saveNoteFromFlags(cmd *cobra.Command, id int64) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	holder := a.newHolder()
	defer holder.Close()

	in := viewmodel.NoteInput{NoteID: id}
	if id > 0 {
		if err := holder.LoadNote(cmd.Context(), id); err != nil {
			return err
		}
		current := holder.CurrentNote()
		if current == nil {
			return fmt.Errorf("note not found: %d", id)
		}
		in.Title, in.Body = current.Title, current.Body
		in.Latitude, in.Longitude, in.Accuracy = current.Latitude, current.Longitude, current.Accuracy
		in.Tags, in.ImageURI = current.Tags, current.ImageURI
	}

	if err := applyInputFlags(cmd, &in); err != nil {
		return err
	}

	savedID, err := holder.SaveNote(cmd.Context(), in)
	if err != nil {
		return err
	}
	if msg := holder.ValidationError(); msg != "" {
		return errors.New(msg)
	}

	saved, err := a.repo.Get(cmd.Context(), savedID)
	if err != nil {
		return err
	}
	printNote(cmd.OutOrStdout(), saved)
	return nil
}

// applyInputFlags overlays the flags that were set onto in.
func applyInputFlags(cmd *cobra.Command, in *viewmodel.NoteInput) error {
	flags := cmd.Flags()
	ctx := cmd.Context()

	if flags.Changed("title") {
		in.Title, _ = flags.GetString("title")
	}
	if flags.Changed("body") {
		in.Body, _ = flags.GetString("body")
	}
	if flags.Changed("tags") {
		tags, _ := flags.GetString("tags")
		in.Tags = &tags
	}

	if clearLocation, _ := flags.GetBool("clear-location"); clearLocation {
		in.Latitude, in.Longitude, in.Accuracy = nil, nil, nil
	}
	if flags.Changed("lat") || flags.Changed("lon") {
		if !flags.Changed("lat") || !flags.Changed("lon") {
			return errors.New("--lat and --lon must be given together")
		}
		lat, _ := flags.GetFloat64("lat")
		lon, _ := flags.GetFloat64("lon")
		in.Latitude, in.Longitude, in.Accuracy = &lat, &lon, nil
		if flags.Changed("accuracy") {
			acc, _ := flags.GetFloat32("accuracy")
			in.Accuracy = &acc
		}
	}
	if here, _ := flags.GetBool("here"); here {
		fix, err := device.FetchLocation(ctx, permissionGate(), locationSource())
		if err != nil {
			// Saving goes on without a location.
			logger.Warn("location unavailable", zap.Error(err))
			stderrf("Warning: %v\n", err)
		} else {
			in.Latitude, in.Longitude, in.Accuracy = &fix.Latitude, &fix.Longitude, fix.Accuracy
		}
	}

	if clearImage, _ := flags.GetBool("clear-image"); clearImage {
		in.ImageURI = nil
	}
	if image, _ := flags.GetString("image"); image != "" {
		uri, ok, err := device.FileImport{Source: image, MediaDir: cfg.MediaDir}.Capture(ctx)
		if err != nil {
			return err
		}
		if ok {
			in.ImageURI = &uri
		}
	}
	if photo, _ := flags.GetBool("photo"); photo {
		uri, err := device.CapturePhoto(ctx, permissionGate(), cameraCapture())
		switch {
		case errors.Is(err, device.ErrPermissionDenied):
			stderrf("Warning: camera permission not granted, saving without a photo\n")
		case err != nil:
			return err
		case uri != nil:
			in.ImageURI = uri
		}
	}
	return nil
}

var getNoteCmd = &cobra.Command{
	Use:   "get [note-id]",
	Short: "Get a note by ID",
	Long:  `Retrieve a note by its ID, archived or not.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.repo.Get(cmd.Context(), id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			return fmt.Errorf("note not found: %d", id)
		}
		if err != nil {
			return err
		}
		printNote(cmd.OutOrStdout(), n)
		return nil
	},
}

var listNotesCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes",
	Long:  `List active notes, most recently updated first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.snapshot(cmd.Context())
		if err != nil {
			return err
		}
		list = notes.FilterByTag(list, tag)
		if limit > 0 && limit < len(list) {
			list = list[:limit]
		}
		return writeNotes(cmd, format, list)
	},
}

var searchNotesCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy-search active notes",
	Long:  `Search titles, bodies and tags of active notes; best matches first.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.snapshot(cmd.Context())
		if err != nil {
			return err
		}
		return writeNotes(cmd, format, notes.Search(list, strings.Join(args, " ")))
	},
}

func writeNotes(cmd *cobra.Command, format string, list []notes.Note) error {
	if format == "" || format == "text" {
		printNoteRows(cmd.OutOrStdout(), list)
		return nil
	}
	return export.Write(cmd.OutOrStdout(), format, list)
}

var archiveNoteCmd = &cobra.Command{
	Use:   "archive [note-id]",
	Short: "Archive a note",
	Long:  `Hide a note from the active list. The note stays retrievable with 'notes get'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		holder := a.newHolder()
		defer holder.Close()

		if err := holder.Archive(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %d archived.\n", id)
		return nil
	},
}

var deleteNoteCmd = &cobra.Command{
	Use:   "delete [note-id]",
	Short: "Delete a note permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseNoteID(args[0])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.repo.Get(cmd.Context(), id)
		if errors.Is(err, notes.ErrNoteNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "Note %d not found, nothing to delete.\n", id)
			return nil
		}
		if err != nil {
			return err
		}
		if err := a.repo.Delete(cmd.Context(), n); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Note %d deleted successfully.\n", id)
		return nil
	},
}

var watchNotesCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the active notes every time they change",
	Long: `Keep printing the active notes list as it changes, including writes made by
other geonote processes on the same database file. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.path != ":memory:" {
			if err := a.store.WatchFile(ctx, a.path, cfg.WatchDebounce); err != nil {
				return err
			}
		}

		holder := a.newHolder()
		defer holder.Close()

		out := cmd.OutOrStdout()
		return watchNotes(ctx, holder, func(list []notes.Note) {
			fmt.Fprintf(out, "--- %s: %d active notes ---\n", time.Now().Format(time.TimeOnly), len(list))
			printNoteRows(out, list)
		})
	},
}

// watchNotes calls render for every list the holder publishes until ctx is done.
// The placeholder published before the first query lands is never rendered.
func watchNotes(ctx context.Context, holder *viewmodel.Holder, render func([]notes.Note)) error {
	stream := holder.Notes(ctx)
	select {
	case <-ctx.Done():
		return nil
	case <-holder.Loaded():
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case list, ok := <-stream:
			if !ok {
				return nil
			}
			render(list)
		}
	}
}

func addNoteInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Title of the note")
	cmd.Flags().String("body", "", "Body of the note")
	cmd.Flags().String("tags", "", "Comma-separated tags")
	cmd.Flags().Float64("lat", 0, "Latitude in degrees (requires --lon)")
	cmd.Flags().Float64("lon", 0, "Longitude in degrees (requires --lat)")
	cmd.Flags().Float32("accuracy", 0, "Accuracy radius in meters (with --lat/--lon)")
	cmd.Flags().Bool("here", false, "Attach the current location from the configured location command")
	cmd.Flags().String("image", "", "Path of a photo to copy into the media directory and attach")
	cmd.Flags().Bool("photo", false, "Take a photo with the configured camera command and attach it")
}

func initNotesCmd() {
	addNoteInputFlags(createNoteCmd)
	addNoteInputFlags(editNoteCmd)
	editNoteCmd.Flags().Bool("clear-location", false, "Remove the stored location")
	editNoteCmd.Flags().Bool("clear-image", false, "Remove the attached photo")

	listNotesCmd.Flags().String("tag", "", "Only list notes with this tag")
	listNotesCmd.Flags().Int("limit", 0, "Maximum number of notes to list (0 for all)")
	listNotesCmd.Flags().String("format", "text", "Output format: text, json, yaml or html")
	searchNotesCmd.Flags().String("format", "text", "Output format: text, json, yaml or html")

	notesCmd.AddCommand(createNoteCmd, editNoteCmd, getNoteCmd, listNotesCmd, searchNotesCmd,
		archiveNoteCmd, deleteNoteCmd, watchNotesCmd)
}
