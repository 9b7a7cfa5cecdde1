package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidestep/internal/adapters/primary/simulate"
	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
	"github.com/fredcamaral/slidestep/internal/domain/entities"
	"github.com/fredcamaral/slidestep/internal/domain/ports"
	"github.com/fredcamaral/slidestep/internal/domain/services"
)

var (
	simulateSlides   int
	simulateExtent   float64
	simulateSteps    string
	simulateCooldown int
	simulateLayout   string
	simulateFormat   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [script]",
	Short: "Replay scripted input against an in-memory feed",
	Long: `Replay a sequence of wheel, key and touch events against an in-memory
feed and print every transition the controller makes.

Script steps are whitespace separated, # starts a comment:
  wheel:40       wheel notification
  key:End        key press (DOM key name, key:Space for the space bar)
  swipe:80@150   touch gesture, distance in px @ duration in ms
  wait:600       pause in ms
  resize:3       replace the feed with 3 slides
  scroll:1600    free user scroll to an offset

Example:
  slidestep simulate --steps "wheel:40 wheel:40 wait:600 key:End"
  slidestep simulate scenario.txt --slides 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateSlides, "slides", 5, "Number of uniform slides")
	simulateCmd.Flags().Float64Var(&simulateExtent, "extent", 800, "Viewport extent in pixels")
	simulateCmd.Flags().StringVar(&simulateSteps, "steps", "", "Inline script, used when no script file is given")
	simulateCmd.Flags().IntVar(&simulateCooldown, "cooldown", 0, "Cooldown in milliseconds (overrides config)")
	simulateCmd.Flags().StringVar(&simulateLayout, "layout", "", "Layout: uniform, nearest_center or auto (overrides config)")
	simulateCmd.Flags().StringVar(&simulateFormat, "format", "text", "Summary format: text or json")
}

// readScript parses the script file argument, or the --steps flag without one
func readScript(args []string, inline string) ([]simulate.Step, error) {
	if len(args) == 0 {
		if strings.TrimSpace(inline) == "" {
			return nil, errors.New("no steps: pass a script file or --steps")
		}
		return simulate.ParseScript(strings.NewReader(inline))
	}

	file, err := os.Open(args[0]) // #nosec G304 - path from the command line
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = file.Close() }()

	return simulate.ParseScript(file)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateFormat != "text" && simulateFormat != "json" {
		return fmt.Errorf("unsupported format: %s (must be text or json)", simulateFormat)
	}
	if simulateSlides < 0 || simulateExtent <= 0 {
		return errors.New("slides must be non-negative and extent positive")
	}

	steps, err := readScript(args, simulateSteps)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, ports.FlagOverrides{
		CooldownMs: simulateCooldown,
		Layout:     entities.Layout(simulateLayout),
	})
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	out := cmd.OutOrStdout()
	sim := simulate.New(simulate.Options{
		Feed:       memory.NewFeed(simulateExtent, memory.UniformItems(simulateSlides)...),
		Controller: services.OptionsFromConfig(cfg.Navigation),
		Retry:      services.RetryPolicyFromConfig(cfg.Discovery),
		Out:        out,
		Logger:     logger,
	})

	report, err := sim.Run(cmd.Context(), steps)
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}

	return writeReport(out, report, simulateFormat)
}

func writeReport(w io.Writer, report simulate.Report, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw)
	_, _ = fmt.Fprintf(tw, "Steps\t%d\n", report.Steps)
	_, _ = fmt.Fprintf(tw, "Transitions\t%d\n", report.Transitions)
	_, _ = fmt.Fprintf(tw, "Suppressed\t%d\n", report.Suppressed)
	_, _ = fmt.Fprintf(tw, "Drifts\t%d\n", report.Drifts)
	_, _ = fmt.Fprintf(tw, "Final slide\t%d/%d\n", report.Final.CurrentIndex+1, report.Final.SlideCount)
	return tw.Flush()
}
