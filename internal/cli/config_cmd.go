package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airsstack/airssys-osl/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (principal=%s, acl_entries=%d, audit=%s)\n",
				args[0], c.Principal, len(c.Security.ACL), backendName(c))
			return nil
		},
	}
}

func backendName(c *config.Config) string {
	if c.Audit.Backend == "" {
		return "disabled"
	}
	return c.Audit.Backend
}
