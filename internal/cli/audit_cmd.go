package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/airsstack/airssys-osl/pkg/audit"
	"github.com/airsstack/airssys-osl/pkg/store/sqlite"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Activity log commands",
	}
	cmd.AddCommand(newAuditQueryCmd())
	return cmd
}

func newAuditQueryCmd() *cobra.Command {
	var (
		principal    string
		opType       string
		status       string
		securityOnly bool
		since        string
		limit        int
		asc          bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "query <sqlite-db>",
		Short: "Query a sqlite activity store",
		Long: `Query activity records from a sqlite audit database.

Examples:
  oslctl audit query activity.db --principal alice --limit 20
  oslctl audit query activity.db --security-only --since 24h
  oslctl audit query activity.db --type process --status failure --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			q := audit.Query{
				Principal:     principal,
				OperationType: opType,
				Status:        audit.Status(status),
				SecurityOnly:  securityOnly,
				Limit:         limit,
				Asc:           asc,
			}
			if since != "" {
				d, err := time.ParseDuration(since)
				if err != nil {
					return fmt.Errorf("invalid --since %q: %w", since, err)
				}
				t := time.Now().UTC().Add(-d)
				q.Since = &t
			}

			entries, err := store.Query(cmd.Context(), q)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-10s %-10s %-8s %s",
					e.Timestamp.Format(time.RFC3339), e.Principal, e.OperationType, e.Status, e.OperationID)
				if e.Error != "" {
					line += "  " + e.Error
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Filter by principal")
	cmd.Flags().StringVar(&opType, "type", "", "Filter by operation type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status: success|failure|denied")
	cmd.Flags().BoolVar(&securityOnly, "security-only", false, "Only security-relevant records")
	cmd.Flags().StringVar(&since, "since", "", "Only records newer than this duration (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum records to return")
	cmd.Flags().BoolVar(&asc, "asc", false, "Oldest first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
