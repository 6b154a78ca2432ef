// Package cli implements the gqlengine command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gqlkit/graphql/config"
)

var (
	configPath string
	schemaPath string
	logLevel   string

	// Version is injected during build
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "gqlengine",
	Short: "gqlengine serves and checks GraphQL schemas",
	Long: `gqlengine runs a GraphQL server over HTTP, or validates and executes
documents against a schema from the command line.

Settings are read from a YAML file given with --config. Flags override the file.
Without --schema the built-in Star Wars schema is used.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path of the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "Path of the SDL file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the configuration file, if any, and applies the
// persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema = schemaPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
