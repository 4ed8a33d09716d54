package cli

import (
	"github.com/nlxtools/trainconf/internal/runconfig"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "validate a training-run configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := resolveSettings(cmd)
		log.Debugf("permissive=%v (source=%s)", s.Permissive, s.Source)

		_, err := runconfig.ParseFile(args[0], runconfig.Options{Permissive: s.Permissive})
		if err != nil && runconfig.ErrorCode(err) == "" {
			// Not a configuration error: unreadable file, bad document.
			return err
		}
		return emitResult(buildResult("train", args[0], s.Permissive, err))
	},
}

var predictCheckCmd = &cobra.Command{
	Use:   "predict-check <config>",
	Short: "validate a prediction configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := resolveSettings(cmd)
		log.Debugf("permissive=%v (source=%s)", s.Permissive, s.Source)

		_, err := runconfig.ParsePredictFile(args[0], runconfig.Options{Permissive: s.Permissive})
		if err != nil && runconfig.ErrorCode(err) == "" {
			return err
		}
		return emitResult(buildResult("predict", args[0], s.Permissive, err))
	},
}
