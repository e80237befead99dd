package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/trainer"
)

// simulateTick is the clock step used while waiting for a step to advance.
const simulateTick = 100 * time.Millisecond

// simulateOptions configures a scripted run.
type simulateOptions struct {
	// Mistakes drops a wrong item once before every step's correct gesture.
	Mistakes bool
	// Pace is the simulated learner think time before each step.
	Pace time.Duration
	// Settle bounds how long to wait for a step to advance after its gesture.
	Settle time.Duration
}

func (c *CLI) simulateCommand() *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the procedure headlessly and print the transcript",
		Long: `Drive a full run through the trainer with scripted gestures derived from
each step's rule, on a simulated clock, and print every outcome followed by
the debrief. With --mistakes a wrong item is dropped before each step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.procedure()
			if err != nil {
				return err
			}
			snap, err := simulate(cmd.Context(), cmd.OutOrStdout(), cfg, c.settings, opts)
			if err != nil {
				return err
			}
			c.Logger.Debug("simulation finished", "run", snap.RunID, "errors", snap.Errors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Mistakes, "mistakes", false, "make one wrong-tool drop before every step")
	cmd.Flags().DurationVar(&opts.Pace, "pace", 2*time.Second, "simulated think time before each step")
	cmd.Flags().DurationVar(&opts.Settle, "settle", 10*time.Second, "maximum simulated wait for a step to advance")
	return cmd
}

// simulate runs one scripted pass and writes the transcript to w.
func simulate(ctx context.Context, w io.Writer, cfg *config.ProcedureConfig, settings *config.Settings, opts simulateOptions) (game.ProcedureSnapshot, error) {
	clock := game.NewManualClock(time.Now())

	tr, err := trainer.New(cfg, trainer.Options{
		Clock:         clock,
		CoarsePointer: settings.CoarsePointer,
		Hooks: trainer.Hooks{
			OnStepEnter: func(step game.Step) {
				fmt.Fprintln(w)
				fmt.Fprintln(w, styleTitle.Render(step.Title))
			},
		},
	})
	if err != nil {
		return game.ProcedureSnapshot{}, err
	}
	ap := trainer.NewAutopilot(tr)

	for !tr.Complete() {
		if err := ctx.Err(); err != nil {
			return tr.Snapshot(), err
		}
		clock.Advance(opts.Pace)
		tr.Update()

		step := tr.CurrentStep().Ordinal
		if opts.Mistakes {
			printGesture(w, ap.Mistake())
		}
		gestures, err := ap.Perform()
		for _, g := range gestures {
			printGesture(w, g)
		}
		if err != nil {
			return tr.Snapshot(), fmt.Errorf("step %d: %w", step, err)
		}
		if err := awaitAdvance(tr, clock, step, opts.Settle); err != nil {
			return tr.Snapshot(), err
		}
	}

	snap := tr.Snapshot()
	printDebrief(w, tr.Registry().Name(), snap)
	return snap, nil
}

// awaitAdvance steps the clock until the run leaves step from.
func awaitAdvance(tr *trainer.Trainer, clock *game.ManualClock, from int, limit time.Duration) error {
	for waited := time.Duration(0); waited <= limit; waited += simulateTick {
		if tr.Complete() || tr.CurrentStep().Ordinal != from {
			return nil
		}
		clock.Advance(simulateTick)
		tr.Update()
	}
	return fmt.Errorf("step %d did not advance within %s", from, limit)
}

func printGesture(w io.Writer, g trainer.Gesture) {
	what := "tap"
	if g.Tool != "" {
		what = g.Tool
	}
	line := fmt.Sprintf("%-14s (%6.1f, %6.1f)  %s", what, g.At.X, g.At.Y, g.Outcome.Message)
	switch {
	case g.Outcome.Accepted:
		printSuccess(w, "%s", line)
	case g.Outcome.Rejected():
		printError(w, "%s [%s]", line, g.Outcome.Reason)
	default:
		printInfo(w, "%s [%s]", line, g.Outcome.Reason)
	}
}

func printDebrief(w io.Writer, name string, snap game.ProcedureSnapshot) {
	elapsed := int(snap.Elapsed / time.Second)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleTitle.Render("Debrief: "+name))
	fmt.Fprintf(w, "  Steps completed: %d/%d\n", len(snap.Completed), snap.TotalSteps)
	fmt.Fprintf(w, "  Errors:          %d\n", snap.Errors)
	fmt.Fprintf(w, "  Time:            %02d:%02d\n", elapsed/60, elapsed%60)
}
