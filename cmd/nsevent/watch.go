package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/nsevent/internal/event"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <scenario.yaml>",
		Short: "Rerun a scenario whenever its file changes",
		Long: `watch runs the scenario once and then again after every write to the file,
until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchScenario(cmd.Context(), cmd.OutOrStdout(), args[0], c.registryOptions())
		},
	}
}

// watchScenario runs path now and after each change until ctx is done.
func watchScenario(ctx context.Context, w io.Writer, path string, opts []event.Option) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	rerun := func() {
		if _, err := runScenario(w, path, opts); err != nil {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		}
	}
	rerun()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	fmt.Fprintln(w, dimStyle.Render("watching "+path+" (Ctrl+C to stop)"))
	return watchLoop(ctx, fsw, path, rerun)
}

// watchLoop calls rerun for every write or create of path reported by fsw.
// It returns nil when ctx is done.
func watchLoop(ctx context.Context, fsw *fsnotify.Watcher, path string, rerun func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("Scenario changed")
			rerun()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}
