package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webboost.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webboost",
		Short: "Mobile monetization audits for web pages",
		Long: `webboost loads a page in a headless browser with a mobile viewport and
reports three signals: how much of the page is covered by ads, whether it
carries Recipe structured data, and how many words it renders.

Configuration is read from WEBBOOST_* environment variables. Set
CHROME_EXECUTABLE_PATH to use a locally installed Chrome; otherwise a pinned
portable build is downloaded on first use.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
