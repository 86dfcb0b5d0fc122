package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	syncx "github.com/mind-engage/mindengage-trainer/internal/sync"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the event log as JSON lines",
	Long:  "Prints QuestionSetCreated and TestCompleted events in append order, one JSON object per line.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		after, _ := cmd.Flags().GetInt64("after")
		typ, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		dbh, _, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer dbh.Close()

		events, err := syncx.NewEventRepo(dbh).Since(cmd.Context(), after, typ, limit)
		if err != nil {
			return fmt.Errorf("read events: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, e := range events {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().Int64("after", 0, "only events with a larger sequence number")
	eventsCmd.Flags().String("type", "", "filter by event type")
	eventsCmd.Flags().Int("limit", 100, "maximum events to print (1-1000)")
}
