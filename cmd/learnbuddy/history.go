// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/learnbuddy/internal/chat"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored conversations or the messages of one session",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("session", "", "show the messages of this session")
	historyCmd.Flags().Int("limit", 20, "maximum number of messages to show (0 for all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	session, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	store, err := chat.OpenStore(cfg.Chat.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if session == "" {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return enc.Encode(sessions)
		}
		if len(sessions) == 0 {
			fmt.Println("No conversations stored.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tMESSAGES\tUPDATED")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", s.ID, s.Messages, s.UpdatedAt.Local().Format(time.DateTime))
		}
		return tw.Flush()
	}

	msgs, err := store.Recent(ctx, session, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return enc.Encode(msgs)
	}
	for _, m := range msgs {
		fmt.Printf("[%s] %s:\n%s\n\n", m.CreatedAt.Local().Format(time.DateTime), m.Role, m.Text)
	}
	return nil
}
