package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/glossa/internal/cli"
	"codeberg.org/snonux/glossa/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()
	proc := processor.NewProcessor(flags, nil)

	// Create root command
	rootCmd := cli.CreateRootCommand(flags, proc.Handlers())

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		proc.SetLogger(cli.NewLogger(os.Stderr))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
