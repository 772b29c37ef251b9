package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"maptools/dotosu"
)

type roundTripResult struct {
	Path string
	// Line is the 1-based first differing line, 0 when the output matches.
	Line      int
	Want, Got string
	Err       error
}

func (r roundTripResult) OK() bool { return r.Err == nil && r.Line == 0 }

func (r roundTripResult) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("FAIL %s: %v", r.Path, r.Err)
	case r.Line != 0:
		return fmt.Sprintf("DIFF %s line %d:\n  want %q\n  got  %q", r.Path, r.Line, r.Want, r.Got)
	}
	return "ok   " + r.Path
}

// checkRoundTrip decodes and re-encodes path and compares the bytes.
func checkRoundTrip(path string, opts dotosu.EncodeOptions) roundTripResult {
	res := roundTripResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	b, err := dotosu.Decode(string(data))
	if err != nil {
		res.Err = err
		return res
	}
	out := dotosu.Encode(b, opts)
	if out == string(data) {
		return res
	}
	res.Line, res.Want, res.Got = firstDiff(string(data), out)
	return res
}

func firstDiff(want, got string) (int, string, string) {
	wl := strings.Split(want, "\n")
	gl := strings.Split(got, "\n")
	for i := 0; i < max(len(wl), len(gl)); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g || i >= len(wl) || i >= len(gl) {
			return i + 1, w, g
		}
	}
	// Only reachable when the texts differ in a way splitting hides.
	return 1, want, got
}

// roundTripFiles checks paths in parallel. Results keep the order of paths.
func roundTripFiles(ctx context.Context, paths []string, opts dotosu.EncodeOptions) ([]roundTripResult, error) {
	results := make([]roundTripResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkRoundTrip(p, opts)
			return nil
		})
	}
	return results, g.Wait()
}

func printResults(w io.Writer, results []roundTripResult) (failed int) {
	for _, r := range results {
		fmt.Fprintln(w, r.String())
		if !r.OK() {
			failed++
		}
	}
	return failed
}

func roundtripCmd(cfg func() (Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip [file.osu]...",
		Short: "Decode and re-encode beatmaps and report byte differences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfg()
			if err != nil {
				return err
			}
			results, err := roundTripFiles(cmd.Context(), args, dotosu.EncodeOptions{FloatPrecision: c.FloatPrecision})
			if err != nil {
				return err
			}
			if failed := printResults(cmd.OutOrStdout(), results); failed > 0 {
				return fmt.Errorf("%d of %d files did not round trip", failed, len(results))
			}
			return nil
		},
	}
}
