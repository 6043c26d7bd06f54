package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/templui/heartroom/internal/app"
)

func RankingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rankings",
		Short: "Print the heart leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rankings, err := a.RankingService.Rankings(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "RANK\tUSER\tHEARTS\tBANNERS")
				for _, u := range rankings.Users {
					fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", u.Rank, u.Username, u.HeartsCount, len(u.EquippedBanners))
				}
				err = w.Flush()
				if err != nil {
					return err
				}

				fmt.Printf("\n%d hearts across %d users, %d banners\n",
					rankings.Stats.TotalHearts, rankings.Stats.TotalUsers, rankings.Stats.TotalBanners)
				return nil
			})
		},
	}
}
