package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/airsstack/airssys-osl/pkg/config"
	"github.com/airsstack/airssys-osl/pkg/framework"
)

func newExecCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute an operation through a configured framework",
		Long: `Execute a single operation through the full pipeline built from a
configuration file: security policies, audit logging, and rate limits all
apply, exactly as they would in an embedding application.

Examples:
  oslctl exec --config osl.yaml read /etc/hostname
  oslctl exec --config osl.yaml spawn -- ls -la /tmp
  oslctl exec --config osl.yaml connect localhost:8080`,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "osl.yaml", "Configuration file")

	build := func() (*framework.Framework, error) {
		c, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return c.Build()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "read <path>",
			Short: "Read a file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fw, err := build()
				if err != nil {
					return err
				}
				defer fw.Close()
				res, err := fw.Filesystem().ReadFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err := res.OutputString()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <path>",
			Short: "List a directory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fw, err := build()
				if err != nil {
					return err
				}
				defer fw.Close()
				res, err := fw.Filesystem().ListDir(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err := res.OutputString()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "spawn -- <command> [args...]",
			Short: "Spawn a process and print its output",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fw, err := build()
				if err != nil {
					return err
				}
				defer fw.Close()
				res, err := fw.Process().Spawn(cmd.Context(), args[0], args[1:]...)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(res.Output))
				if !res.IsSuccess() {
					return fmt.Errorf("command exited %d", res.ExitCode)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "connect <host:port>",
			Short: "Probe TCP reachability",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fw, err := build()
				if err != nil {
					return err
				}
				defer fw.Close()
				res, err := fw.Network().Connect(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				remote, _ := res.GetMetadata("remote_addr")
				fmt.Fprintf(cmd.OutOrStdout(), "connected to %s in %s\n", remote, res.Duration)
				return nil
			},
		},
		&cobra.Command{
			Use:   "kill <pid>",
			Short: "Kill a process",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid pid %q", args[0])
				}
				fw, err := build()
				if err != nil {
					return err
				}
				defer fw.Close()
				if _, err := fw.Process().Kill(cmd.Context(), pid); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "killed %d\n", pid)
				return nil
			},
		},
	)
	return cmd
}
