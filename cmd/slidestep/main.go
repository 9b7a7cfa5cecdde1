package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version and BuildDate are stamped with -ldflags at release
	Version   = "dev"
	BuildDate = "unknown"
)

const versionTemplate = `{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build Date: `

var rootCmd = &cobra.Command{
	Use:   "slidestep",
	Short: "Discrete slide navigation for scroll feeds",
	Long: `slidestep turns wheel, key and touch input on a vertical feed into
one-slide-at-a-time transitions. It drives real pages through a websocket
bridge, previews manifests in the terminal, and replays scripted input.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// a second interrupt while sessions drain kills the process outright
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "\nInterrupted, sessions closed")
	}
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(versionTemplate + BuildDate + "\n")

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Log navigation decisions at debug level")
	flags.StringP("config", "c", "", "Config file (default: ./slidestep.toml)")
}
