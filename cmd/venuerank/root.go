package main

import (
	"context"

	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	root := &cobra.Command{Use: "venuerank", Short: "Multi-venue market scoring and selection"}
	root.AddCommand(rankCmd())
	return root.ExecuteContext(ctx)
}
