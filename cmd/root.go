// Package cmd implements the cost-counsel CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "cost-counsel",
	Short: "Legal cost advisory from a validated rule base",
	Long: `cost-counsel matches case facts against a pre-built base of legal cost
rules, reports what information is still missing, computes the scheduled
costs, and guards any generated explanation against the computed result.

Explanations that contradict the computed figures, cite unknown rules, or
misstate the binding force are rejected and regenerated; when the retry
budget runs out the computed result is presented on its own.`,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.cost-counsel/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// buildLogger builds the CLI logger. Verbose runs get development output at
// debug level; otherwise logging stays quiet so command output is usable in
// pipelines.
func buildLogger() (logger *zap.Logger, err error) {
	if getVerbose() {
		logger, err = zap.NewDevelopment()
		return logger, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	logger, err = cfg.Build()
	return logger, err
}
