package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/nsevent/internal/config"
	"github.com/dshills/nsevent/internal/event"
	"github.com/dshills/nsevent/internal/logging"
)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	configPath string
	verbosity  int

	cfg       config.Config
	logCloser io.Closer
}

// registryOptions returns the event options selected by the loaded config.
func (c *cli) registryOptions() []event.Option {
	return c.cfg.RegistryOptions()
}

// NewRootCmd builds the nsevent command tree. The returned closer releases
// what running the command opened, such as the log file; call it after
// Execute whether or not the command failed.
func NewRootCmd() (*cobra.Command, io.Closer) {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "nsevent",
		Short: "Run namespaced event scenarios",
		Long: `nsevent drives a namespaced event registry from YAML scenarios and
reports which handlers ran, in what order, and whether every expectation held.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "nsevent.toml", "Path to configuration file")
	rootCmd.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(newRunCmd(c))
	rootCmd.AddCommand(newWatchCmd(c))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd, c
}

// Close releases the log file, if one was opened.
func (c *cli) Close() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

// setup loads the configuration and configures logging.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	level = logging.LevelForVerbosity(level, c.verbosity)

	closer, err := logging.Setup(level, cmd.ErrOrStderr(), cfg.Log.File)
	if err != nil {
		return err
	}
	c.logCloser = closer

	log.Debug().Str("command", cmd.Name()).Str("config", c.configPath).Msg("Command started")
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nsevent version %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}
