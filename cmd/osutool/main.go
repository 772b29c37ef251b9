package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.Ltime)
	defer recoverPanic()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	rootCmd := &cobra.Command{
		Use:          "osutool",
		Short:        "Inspect, verify and edit osu! beatmaps",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("OSUTOOL_CONFIG"), "YAML config file")

	cfg := func() (Config, error) { return loadConfig(configPath) }
	rootCmd.AddCommand(roundtripCmd(cfg))
	rootCmd.AddCommand(stackCmd(cfg))
	rootCmd.AddCommand(comboCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(fetchCmd(cfg))
	rootCmd.AddCommand(watchCmd(cfg))
	rootCmd.AddCommand(copyCmd(cfg))
	return rootCmd
}

// recoverPanic prints the stack of a panic escaping a command and exits.
func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	buf := make([]byte, 100000)
	buf = buf[:runtime.Stack(buf, false)]
	fmt.Fprintf(os.Stderr, "Panic: %v\n\n%s\n\n", r, buf)
	os.Exit(1)
}
