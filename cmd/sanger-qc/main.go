// Package main provides the sanger-qc command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sanger-qc",
		Short: "Quality control for Sanger sequencing reads",
		Long: `sanger-qc computes quality metrics for Sanger reads (AB1 chromatograms
and PHD files), trims low-quality ends, and optionally reclassifies
ambiguous positions from raw peak intensities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	root.PersistentFlags().Bool("quiet", false, "Disable logging")

	root.AddCommand(newQCCmd())
	root.AddCommand(newTrimCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sanger-qc version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig loads ~/.sanger-qc.yaml if present. A missing config file is
// not an error.
func initConfig() {
	viper.SetConfigName(".sanger-qc")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		}
	}
}

// newLogger builds the run logger. Debug level on verbose, a no-op logger
// on quiet.
func newLogger(cmd *cobra.Command) *zap.Logger {
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet {
		return zap.NewNop()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
