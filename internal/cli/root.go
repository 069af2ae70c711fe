// Package cli implements the oslctl command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRoot builds the oslctl root command.
func NewRoot(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oslctl",
		Short:         "oslctl: inspect and exercise the OS abstraction framework",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.SetVersionTemplate("oslctl {{.Version}}\n")

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newPolicyCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newExecCmd())

	return cmd
}
