// Package cli implements the trainconf command line: validate, show, and
// predict-check over training/prediction configuration documents.
package cli

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	jsonOut    bool
	permissive bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:           "trainconf",
	Short:         "load and validate training-run configurations",
	Long:          "trainconf loads, validates, and re-serializes the configuration contract of a neural sequence-model training run.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.WarnLevel)
		}
	},
}

// Execute runs the CLI and returns the process exit code:
// 0 valid, 1 configuration rejected, 2 usage or I/O failure.
func Execute(version string, args []string) int {
	rootCmd.Version = version
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		log.Error(err)
		return 2
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&permissive, "permissive", false, "accept unknown fields")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(predictCheckCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return "exit"
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }
