package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imagededup/database"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics of the run mirrored in the SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openExistingMirror()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := database.GetScanStats(db)
			if err != nil {
				return err
			}

			s := stats.Scan
			rows := [][]string{
				{"Scan", s.ID},
				{"Root", s.Root},
				{"Backend", s.Backend},
				{"Finished", fmt.Sprintf("%s (%s)", s.FinishedAt.Local().Format(time.DateTime), humanize.Time(s.FinishedAt))},
				{"Duration", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()},
				{"Discovered", strconv.Itoa(s.Discovered)},
				{"Hashed", strconv.Itoa(s.Hashed)},
				{"Skipped", strconv.Itoa(s.Skipped)},
				{"Failed", strconv.Itoa(s.Failed)},
				{"Stored images", strconv.Itoa(stats.TotalImages)},
				{"Unique PHash values", strconv.Itoa(stats.UniqueHashes)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
