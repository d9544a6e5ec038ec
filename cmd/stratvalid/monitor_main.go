package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	monitorhttp "github.com/sawpanic/stratvalid/internal/interfaces/http"
)

func runMonitor(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return monitorhttp.NewServer(addr).ListenAndServe(ctx)
}
