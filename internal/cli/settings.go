package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// settings are the resolved loader options for one invocation.
// Precedence: flag, then TRAINCONF_* env, then defaults.
type settings struct {
	Permissive bool
	// Source is informational for operator debugging.
	Source string
}

func resolveSettings(cmd *cobra.Command) settings {
	s := settings{Source: "default"}
	if v := strings.TrimSpace(os.Getenv("TRAINCONF_PERMISSIVE")); v != "" {
		s.Permissive = v == "1" || strings.EqualFold(v, "true")
		s.Source = "env:TRAINCONF_PERMISSIVE"
	}
	if cmd.Flags().Changed("permissive") {
		s.Permissive = permissive
		s.Source = "flag"
	}
	return s
}
