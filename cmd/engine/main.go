package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "engine",
		Short:         "Wastewater discharge audit tracker",
		Long:          "Tracks compliance audits: document checklists, deadlines, closure analytics and follow-up drafts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		serveCmd(),
		requirementsCmd(),
		analyticsCmd(),
		secretsCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP engine (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// dataDir comes from env so a launcher can pass one, else the local folder.
func dataDir() (string, error) {
	dir := os.Getenv("AUDITTRACK_DATA_DIR")
	if dir == "" {
		dir = "."
	}
	return dir, os.MkdirAll(dir, 0o755)
}
