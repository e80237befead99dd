// Package cli implements the iotrainer command-line interface.
//
// # Commands
//
//   - run: open the training window
//   - steps: list the steps of a procedure
//   - validate: load and validate procedure files
//   - simulate: drive a scripted run headlessly and print the transcript
//
// Settings come from flags, IOTRAINER_* environment variables and an optional
// YAML config file, merged by viper. All commands support --verbose (-v) for
// debug-level logging.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/michjt19/Individual-Critical-Task-Virtual-Simulation/pkg/config"
)

const appName = "iotrainer"

// CLI holds shared state for all commands.
type CLI struct {
	Logger   *log.Logger
	viper    *viper.Viper
	settings *config.Settings
}

// New creates a new CLI instance logging to w.
func New(w io.Writer) *CLI {
	v := viper.New()
	config.SetDefaults(v)
	return &CLI{
		Logger: newLogger(w, log.WarnLevel),
		viper:  v,
	}
}

// Execute runs the iotrainer CLI.
func Execute() error {
	return New(os.Stderr).RootCommand().ExecuteContext(context.Background())
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Intraosseous device placement trainer",
		Long:         `iotrainer walks a learner through placing a humeral intraosseous device step by step, validating every drag-and-drop gesture against the procedure's spatial rules.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadSettings(cmd, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./iotrainer.yaml if present)")
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.StringP("procedure", "p", config.DefaultProcedurePath, "procedure file (paths under data/ are read from the embedded catalog)")
	flags.Bool("coarse-pointer", false, "widen tolerance radii for touch input")

	c.bindFlags(flags, map[string]string{
		"verbose":        "verbose",
		"procedure":      "procedure",
		"coarse_pointer": "coarse-pointer",
	})

	root.AddCommand(c.runCommand())
	root.AddCommand(c.stepsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.simulateCommand())

	return root
}

// bindFlags binds each settings key to the named flag in flags.
// A missing flag is a programming error and panics.
func (c *CLI) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("flag --%s not defined", name))
		}
		if err := c.viper.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

// loadSettings merges the config file, environment and flags into c.settings
// and sets the log level.
func (c *CLI) loadSettings(cmd *cobra.Command, cfgFile string) error {
	if cfgFile != "" {
		c.viper.SetConfigFile(cfgFile)
	} else {
		c.viper.SetConfigName(appName)
		c.viper.SetConfigType("yaml")
		c.viper.AddConfigPath(".")
	}
	config.ConfigureEnv(c.viper)

	if err := c.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	settings, err := config.LoadSettings(c.viper)
	if err != nil {
		return err
	}
	c.settings = settings

	if settings.Verbose {
		c.Logger.SetLevel(log.DebugLevel)
	}
	c.Logger.Debug("settings loaded", "procedure", settings.Procedure, "config", c.viper.ConfigFileUsed())
	return nil
}

// procedure loads the procedure named by the settings.
func (c *CLI) procedure() (*config.ProcedureConfig, error) {
	cfg, err := config.LoadProcedure(c.settings.Procedure)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("procedure loaded", "id", cfg.ID, "steps", len(cfg.Steps))
	return cfg, nil
}
