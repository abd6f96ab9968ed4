package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/webboost/audit"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <url>",
		Short: "Audit a single URL and print the result as JSON",
		Long: `Audit runs one page audit without starting the API and prints the same
JSON envelope that POST /api/analyze returns.

Examples:
  webboost audit https://example.com/recipes/tomato-soup
  CHROME_EXECUTABLE_PATH=/usr/bin/chromium webboost audit https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCmd,
	}
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	cfg := loadConfig(verbose)
	initLogger(cfg.Log, logWriter)

	a, err := newAuditor(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return runAudit(ctx, cmd.OutOrStdout(), a, args[0])
}

// runAudit prints the envelope for url. A failed audit still prints its
// envelope and then returns an error so the process exits non-zero.
func runAudit(ctx context.Context, w io.Writer, a *audit.Auditor, url string) error {
	res := a.Run(ctx, url)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Response()); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if !res.OK() {
		return fmt.Errorf("audit failed: %s", res.Code())
	}
	return nil
}
