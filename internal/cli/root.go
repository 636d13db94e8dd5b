package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manojoshi/sdborm/config"
	"github.com/manojoshi/sdborm/internal"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"

	cfg *config.Config
	log *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sdbcodec CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sdbcodec",
		Short: "Encode, decode and match sortable attribute values",
		Long: `Inspect how numbers are stored as lexicographically sortable strings,
and how value matchers render into select-expression fragments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))

	return cmd
}

// load reads the config file, if any, and builds the logger.
func (o *RootOptions) load() error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	log, err := cfg.Logging.Logger()
	if err != nil {
		return WrapExitError(ExitCommandError, "build logger", err)
	}
	o.cfg, o.log = cfg, log
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool { return internal.Contains(ValidFormats, format) }
