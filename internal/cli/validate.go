package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/game"
	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/systems"
)

func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [procedure.yaml...]",
		Short: "Validate procedure files",
		Long: `Load each procedure file and check it: YAML structure, scene and tool
references, targets and anchors, and that every step's rule can be built.
With no arguments, every embedded procedure is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				embedded, err := config.ListEmbeddedProcedures()
				if err != nil {
					return err
				}
				paths = embedded
			}
			return validateProcedures(cmd.OutOrStdout(), paths)
		},
	}
}

// validateProcedures checks every path and reports each result.
// It returns an error if any file is invalid.
func validateProcedures(w io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		if err := validateProcedure(path); err != nil {
			printError(w, "%s: %v", path, err)
			failed++
			continue
		}
		printSuccess(w, "%s", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d procedure files invalid", failed, len(paths))
	}
	return nil
}

func validateProcedure(path string) error {
	cfg, err := config.LoadProcedure(path)
	if err != nil {
		return err
	}
	// 规则在构建时才解析锚点和目标
	_, err = systems.BuildRules(game.NewStepRegistry(cfg, game.RegistryOptions{}))
	return err
}
