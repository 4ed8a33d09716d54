package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nlxtools/trainconf/internal/runconfig"
	"github.com/spf13/cobra"
)

// show prints the normalized record: defaults applied, env references
// resolved, extensions preserved. Its output parses back to an equal record.
var showCmd = &cobra.Command{
	Use:   "show <config>",
	Short: "print the normalized configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := resolveSettings(cmd)
		cfg, err := runconfig.ParseFile(args[0], runconfig.Options{Permissive: s.Permissive})
		if err != nil {
			if runconfig.ErrorCode(err) == "" {
				return err
			}
			return emitResult(buildResult("train", args[0], s.Permissive, err))
		}
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}
		out, err := runconfig.Encode(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}
