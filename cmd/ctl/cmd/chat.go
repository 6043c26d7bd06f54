package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/heartroom/internal/app"
	"github.com/templui/heartroom/internal/config"
	"github.com/templui/heartroom/internal/logger"
)

func ChatCmd() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Manage chat messages",
	}

	chatCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every message in the room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				n, err := a.MessageService.ClearAll(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d messages\n", n)
				return nil
			})
		},
	})

	chatCmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Delete messages past their expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				n, err := a.MessageService.SweepExpired(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Swept %d expired messages\n", n)
				return nil
			})
		},
	})

	return chatCmd
}

// withApp boots the full application so deletions reach connected
// clients through the configured change feed.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer logger.Flush()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
