// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/learnbuddy/internal/intent"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [message]",
	Short: "Show how a message would be routed to research sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := strings.TrimSpace(strings.Join(args, " "))
		if msg == "" {
			return fmt.Errorf("provide a message")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(intent.Classify(msg))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
