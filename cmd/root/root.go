// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/extracto-ofx/internal/config"
	"fjacquet/extracto-ofx/internal/container"
	"fjacquet/extracto-ofx/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input    string
	Output   string
	Validate bool
	Format   string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the configuration loaded by PersistentPreRunE
	AppConfig *config.Config

	// AppContainer holds the wired parsers for the running command
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "extracto-ofx",
		Short: "A CLI tool to convert Spanish bank exports to OFX statements.",
		Long: `extracto-ofx converts movement exports from BBVA, Santander and Inversis
(xlsx, xls, CSV, HTML or XML, whatever the file extension says) into an
OFX 2.1.1 bank statement that personal finance software can import.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to extracto-ofx!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// SharedFlags holds the common flags accessible to all commands
	SharedFlags = CommonFlags{}

	configFile string
	logLevel   string
	logFormat  string
	currency   string
)

// PersistentPreRunE is assigned in init to avoid an initialization cycle
// between Cmd and initialize, which reads Cmd's flags.
func init() {
	Cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	}
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().BoolVarP(&SharedFlags.Validate, "validate", "v", false, "Validate file format before conversion")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "ofx", "Output format (ofx or csv)")

	Cmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default searches $HOME/.extracto-ofx, .extracto-ofx and .)")
	Cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text or json)")
	Cmd.PersistentFlags().StringVar(&currency, "currency", "", "ISO 4217 currency of the statement")
}

// initialize loads .env and the configuration, applies flag overrides and
// builds the logger and the container.
func initialize(_ *cobra.Command) error {
	config.LoadEnv()

	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.InitializeConfigFromFile(configFile)
	} else {
		cfg, err = config.InitializeConfig()
	}
	if err != nil {
		return err
	}

	flags := Cmd.PersistentFlags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("currency") {
		cfg.OFX.Currency = currency
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return err
	}

	AppConfig = cfg
	AppContainer = c
	return nil
}

// GetConfig returns the loaded configuration, or the defaults when no
// command has initialized it.
func GetConfig() *config.Config {
	if AppConfig == nil {
		return config.DefaultConfig()
	}
	return AppConfig
}

// GetContainer returns the application container, building one from the
// defaults when no command has initialized it.
func GetContainer() *container.Container {
	if AppContainer == nil {
		c, err := container.NewContainerWithLogger(GetConfig(), Log)
		if err != nil {
			Log.WithError(err).Fatal("Failed to create container")
			return nil
		}
		AppContainer = c
	}
	return AppContainer
}
