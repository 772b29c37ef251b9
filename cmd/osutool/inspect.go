package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"maptools/dotosu"
)

func decodeFile(path string) (*dotosu.Beatmap, error) {
	b, err := dotosu.DecodeSource(localFile(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return b, nil
}

func stackCmd(cfg func() (Config, error)) *cobra.Command {
	var rounded bool
	cmd := &cobra.Command{
		Use:   "stack [file.osu]",
		Short: "Run stacking and print the stacked positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cfg()
			if err != nil {
				return err
			}
			b, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			b.UpdateStackingAll(dotosu.StackingOptions{Rounded: rounded || c.RoundedStacking})
			w := cmd.OutOrStdout()
			for _, ho := range b.HitObjects {
				base := ho.Base()
				count := 0
				if base.Stacking != nil {
					count = base.Stacking.StackCount
				}
				fmt.Fprintf(w, "%s\t%s\t%s\tstack %d\t-> %s\n",
					formatTime(base.StartTime), ho.Type(), base.Pos, count, base.StackedPos())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&rounded, "rounded", "r", false, "round the stack offset like the game does")
	return cmd
}

func comboCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "combo [file.osu]",
		Short: "Print combo numbers and colours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			b.CalculateHitObjectComboStuff()
			w := cmd.OutOrStdout()
			for _, ho := range b.HitObjects {
				base := ho.Base()
				cc := base.Combo
				nc := ""
				if cc.ActualNewCombo {
					nc = "NC"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\tcolour %d (%s)\t%s\n",
					formatTime(base.StartTime), ho.Type(), cc.ComboIndex, cc.ColourIndex+1, cc.Colour, nc)
			}
			return nil
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [file.osu] [timecode]",
		Short: "Print the hit objects an editor timecode selects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := decodeFile(args[0])
			if err != nil {
				return err
			}
			objs, err := b.QueryTimeCode(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ho := range objs {
				fmt.Fprintln(w, ho.Line(false))
			}
			if len(objs) == 0 {
				fmt.Fprintln(w, "no hit objects match")
			}
			return nil
		},
	}
}

// formatTime renders ms as the editor's MM:SS:mmm.
func formatTime(ms float64) string {
	neg := ""
	if ms < 0 {
		neg = "-"
		ms = -ms
	}
	t := int64(ms + 0.5)
	return fmt.Sprintf("%s%02d:%02d:%03d", neg, t/60000, t/1000%60, t%1000)
}
