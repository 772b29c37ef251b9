package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"maptools/dotosu"
)

const watchDebounce = 200 * time.Millisecond

// watchRoundTrip re-checks path after every write until ctx ends. Bursts of
// events within the debounce window trigger one check. The directory is watched
// so editors that replace the file on save are followed.
func watchRoundTrip(ctx context.Context, w io.Writer, path string, opts dotosu.EncodeOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var mu sync.Mutex
	check := func() {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, checkRoundTrip(abs, opts).String())
	}
	check()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, check)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func watchCmd(cfg func() (Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file.osu]",
		Short: "Re-run the round-trip check whenever the file is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfg()
			if err != nil {
				return err
			}
			log.Printf("watching %s", args[0])
			return watchRoundTrip(cmd.Context(), cmd.OutOrStdout(), args[0], dotosu.EncodeOptions{FloatPrecision: c.FloatPrecision})
		},
	}
}
