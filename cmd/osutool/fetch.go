package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"maptools/beatmapset"
	"maptools/dotosu"
)

func newHTTPSource(c Config) *beatmapset.HTTPSource {
	th := beatmapset.NewThrottle(c.HTTP.RateLimit, time.Minute, c.HTTP.MaxConcurrent)
	return beatmapset.NewHTTPSource(c.HTTP.BaseURL, c.HTTP.Session, th)
}

func printSummary(w io.Writer, name string, b *dotosu.Beatmap) {
	fmt.Fprintf(w, "%s\n  %s - %s [%s] by %s\n  mode %d, v%d, %d timing points, %d hit objects, length %s\n",
		name, b.Metadata.Artist(), b.Metadata.Title(), b.Metadata.Version(), b.Metadata.Creator(),
		b.General.Mode(), b.FormatVersion, b.Timing.Len(), len(b.HitObjects),
		formatTime(b.GetMapEndTime()-b.GetMapStartTime()))
}

func fetchCmd(cfg func() (Config, error)) *cobra.Command {
	var set bool
	var out string
	cmd := &cobra.Command{
		Use:   "fetch [id]",
		Short: "Download a beatmap (or with --set a beatmap set) and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			c, err := cfg()
			if err != nil {
				return err
			}
			src := newHTTPSource(c)
			defer src.Throttle.Stop()
			w := cmd.OutOrStdout()

			if set {
				s, err := src.FetchSet(cmd.Context(), id)
				if s == nil {
					return err
				}
				for _, f := range s.BeatmapFiles() {
					if b, ok := s.Beatmap(f.Name()); ok {
						printSummary(w, f.Name(), b)
					}
				}
				fmt.Fprintf(w, "%d sound files\n", len(s.SoundFiles()))
				return err
			}

			f, err := src.FetchBeatmap(cmd.Context(), id)
			if err != nil {
				return err
			}
			b, err := dotosu.DecodeSource(f)
			if err != nil {
				return err
			}
			printSummary(w, f.Name(), b)
			if out != "" {
				data, err := dotosu.ReadAll(f)
				if err != nil {
					return err
				}
				return os.WriteFile(out, data, 0o644)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&set, "set", false, "treat the id as a beatmap set id and download the .osz")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the downloaded .osu file here")
	return cmd
}
