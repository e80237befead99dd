package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
)

func (c *CLI) stepsCommand() *cobra.Command {
	var remedial bool

	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the steps of the procedure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.procedure()
			if err != nil {
				return err
			}
			registry := game.NewStepRegistry(cfg, game.RegistryOptions{CoarsePointer: c.settings.CoarsePointer})
			printSteps(cmd.OutOrStdout(), registry, remedial)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remedial, "remedial", false, "include remedial guidance for each step")
	return cmd
}

// printSteps renders the step table and, optionally, each step's remedial guidance.
func printSteps(w io.Writer, registry *game.StepRegistry, remedial bool) {
	fmt.Fprintln(w, styleTitle.Render(registry.Name()))
	if registry.TaskNumber() != "" {
		fmt.Fprintln(w, styleDim.Render("Task "+registry.TaskNumber()))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, registry.Len())
	for _, step := range registry.Steps() {
		rows = append(rows, []string{
			strconv.Itoa(step.Ordinal),
			step.Title,
			step.Scene,
			step.Rule.Kind,
			strings.Join(step.Tools, ", "),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("#", "Title", "Scene", "Rule", "Tools").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())

	if !remedial {
		return
	}
	for _, step := range registry.Steps() {
		if step.Remedial.Title == "" {
			continue
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleTitle.Render(fmt.Sprintf("%d. %s", step.Ordinal, step.Remedial.Title)))
		if step.Remedial.Description != "" {
			fmt.Fprintln(w, step.Remedial.Description)
		}
		for _, hint := range step.Remedial.Hints {
			printInfo(w, "%s", hint)
		}
	}
}
