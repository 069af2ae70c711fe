package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airsstack/airssys-osl/pkg/config"
	"github.com/airsstack/airssys-osl/pkg/middleware/security"
	"github.com/airsstack/airssys-osl/pkg/osl"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Policy inspection commands",
	}
	cmd.AddCommand(newPolicyEvalCmd())
	return cmd
}

func newPolicyEvalCmd() *cobra.Command {
	var (
		principal string
		action    string
		resource  string
	)

	cmd := &cobra.Command{
		Use:   "eval <config-file>",
		Short: "Evaluate a permission against the configured policies",
		Long: `Evaluate whether a principal would be granted a permission under the
security section of a configuration file, without executing anything.

Examples:
  oslctl policy eval osl.yaml --principal alice --action file:read --resource /etc/hosts
  oslctl policy eval osl.yaml --principal svc --action process:spawn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if principal == "" || action == "" {
				return fmt.Errorf("--principal and --action are required")
			}
			c, err := config.Load(args[0])
			if err != nil {
				return err
			}
			policies, err := c.Policies()
			if err != nil {
				return err
			}

			perm := osl.Permission{Action: action, Resource: resource}
			sc := osl.NewSecurityContext(principal)

			verdict := "deny (no policy allows it)"
			for _, p := range policies {
				d := p.Evaluate(perm, sc)
				switch d.Effect {
				case security.EffectDeny:
					fmt.Fprintf(cmd.OutOrStdout(), "deny: %s\n", d.Reason)
					return nil
				case security.EffectAllow:
					verdict = "allow: " + d.Reason
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), verdict)
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Principal to evaluate as")
	cmd.Flags().StringVar(&action, "action", "", "Permission action (file:read, process:spawn, ...)")
	cmd.Flags().StringVar(&resource, "resource", "", "Permission resource (path, address, utility name)")
	return cmd
}
