package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/openfroyo/deckfiber/pkg/stores"
)

func newHistoryCommand(g *globals) *cobra.Command {
	var (
		rootID string
		failed bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List commits recorded in the journal",
		Example: `  # All commits
  deckfiber history --journal history.db

  # Failed commits of one root
  deckfiber history --journal history.db --root 3f2c... --failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.journal == "" {
				return errors.New("--journal is required")
			}
			ctx := cmd.Context()

			j, err := stores.Open(ctx, stores.Config{Path: g.journal})
			if err != nil {
				return err
			}
			defer j.Close()

			filter := stores.CommitFilter{RootID: rootID, Limit: limit}
			if failed {
				filter.Status = stores.CommitStatusFailed
			}
			commits, err := j.ListCommits(ctx, filter)
			if err != nil {
				return err
			}

			if g.jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(commits)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tROOT\tCOMMIT\tSTATUS\tVIEWS\tLAYERS\tDETAIL")
			for _, c := range commits {
				detail := c.Code
				if c.Status == stores.CommitStatusApplied {
					detail = c.Duration.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					c.CreatedAt.Format(time.RFC3339),
					short(c.RootID),
					short(c.ID),
					c.Status,
					strings.Join(c.Views, ","),
					strings.Join(c.Layers, ","),
					detail,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&rootID, "root", "", "only list commits of this root")
	cmd.Flags().BoolVar(&failed, "failed", false, "only list failed commits")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of commits, 0 for all")

	return cmd
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
