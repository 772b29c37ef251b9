package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"maptools/beatmapset"
	"maptools/dotosu"
	"maptools/hitsoundcopy"
	"maptools/samples"
)

// openInSet decodes path as part of the set in its folder so sample lookups work.
func openInSet(ctx context.Context, path string) (*dotosu.Beatmap, error) {
	s, err := beatmapset.OpenDir(ctx, filepath.Dir(path))
	if s == nil {
		return nil, err
	}
	if err != nil {
		log.Printf("%v", err)
	}
	b, ok := s.Beatmap(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("%s is not a decodable beatmap", path)
	}
	return b, nil
}

func copyCmd(cfg func() (Config, error)) *cobra.Command {
	opts := hitsoundcopy.DefaultOptions()
	var smart bool
	var out string
	cmd := &cobra.Command{
		Use:   "copy [from.osu] [to.osu]",
		Short: "Copy hitsounds from one beatmap to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfg()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			src, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			dst, err := openInSet(ctx, args[1])
			if err != nil {
				return err
			}

			copier := hitsoundcopy.New(opts)
			if c.HashCachePath != "" {
				cache, err := samples.OpenSQLiteHashCache(ctx, c.HashCachePath)
				if err != nil {
					return err
				}
				defer cache.Close()
				copier.Cache = cache
			}

			var tl *dotosu.Timeline
			if smart {
				tl, err = copier.CopySmart(ctx, src, dst)
			} else {
				tl, err = copier.CopyBasic(ctx, src, dst)
			}
			if err != nil {
				return err
			}
			copied := 0
			for _, tlo := range tl.TimelineObjects {
				if tlo.Copied {
					copied++
				}
			}
			log.Printf("copied hitsounds to %d of %d timeline objects", copied, len(tl.TimelineObjects))

			text := dotosu.Encode(dst, dotosu.EncodeOptions{FloatPrecision: c.FloatPrecision})
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			return os.WriteFile(out, []byte(text), 0o644)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&smart, "smart", false, "only overwrite hitsounds the source defines")
	f.StringVarP(&out, "out", "o", "", "write the result here instead of stdout")
	f.Float64VarP(&opts.TemporalLeniency, "leniency", "l", opts.TemporalLeniency, "max ms between notes that copy hitsounds")
	f.BoolVar(&opts.CopyHitsounds, "hitsounds", opts.CopyHitsounds, "copy hitsounds")
	f.BoolVar(&opts.CopyBodyHitsounds, "body-hitsounds", opts.CopyBodyHitsounds, "copy slider body hitsounds")
	f.BoolVar(&opts.CopySampleSets, "samplesets", opts.CopySampleSets, "copy sample sets and indices")
	f.BoolVar(&opts.CopyVolumes, "volumes", opts.CopyVolumes, "copy volumes")
	f.BoolVar(&opts.AlwaysPreserve5Volume, "keep-muted", opts.AlwaysPreserve5Volume, "keep 5% volume objects muted")
	f.BoolVar(&opts.StoryboardedSamples, "storyboard-samples", opts.StoryboardedSamples, "copy storyboarded samples")
	f.BoolVar(&opts.IgnoreHitsoundSatisfiedSamples, "skip-satisfied", opts.IgnoreHitsoundSatisfiedSamples, "skip storyboarded samples a hitsound already plays")
	return cmd
}
