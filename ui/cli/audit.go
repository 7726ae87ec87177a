// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/pinvault/internal/i18n"
)

func newAuditCmd() *cobra.Command {
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and move the authentication audit trail",
	}

	var listLimit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded auth events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openAudit()
			if a == nil {
				return fmt.Errorf("audit log unavailable")
			}
			events, err := a.List(listLimit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println(i18n.T("cli.audit_empty"))
				return nil
			}
			for _, ev := range events {
				line := fmt.Sprintf("%s  %-15s %s",
					ev.Timestamp.Local().Format(time.DateTime), ev.Action, ev.Details)
				fmt.Println(strings.TrimRight(line, " "))
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "maximum number of events (0 for all)")

	exportCmd := &cobra.Command{
		Use:   "export [output-file]",
		Short: "Export the audit trail as a compressed (zstd) JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openAudit()
			if a == nil {
				return fmt.Errorf("audit log unavailable")
			}
			path := fmt.Sprintf("pinvault-audit-%s.json.zst", time.Now().Format(time.DateOnly))
			if len(args) == 1 {
				path = args[0]
				if !strings.HasSuffix(path, ".zst") {
					path += ".zst"
				}
			}
			n, err := a.Export(path)
			if err != nil {
				return err
			}
			fmt.Println(i18n.Tf("cli.export_done", map[string]any{"Count": n, "Path": path}))
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import auth events from a compressed export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := openAudit()
			if a == nil {
				return fmt.Errorf("audit log unavailable")
			}
			n, err := a.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Println(i18n.Tf("cli.import_done", map[string]any{"Count": n, "Path": args[0]}))
			return nil
		},
	}

	auditCmd.AddCommand(listCmd, exportCmd, importCmd)
	return auditCmd
}
