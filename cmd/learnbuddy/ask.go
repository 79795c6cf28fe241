// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/learnbuddy/internal/assistant"
	"github.com/pdiddy/learnbuddy/internal/chat"
	"github.com/pdiddy/learnbuddy/internal/research"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Run one chat turn with optional web research and study material",
	Long: `Ask sends a message to the assistant. Informational messages are researched
first and the findings are included in the prompt. Study material from
--material is cut to its first 2000 characters. With --session the exchange
is stored and the most recent turns are sent as conversation history.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("session", "", "conversation id; empty runs without history")
	askCmd.Flags().String("material", "", "path to a study material text file")
	askCmd.Flags().String("system", "", "replace the system prompt")
	askCmd.Flags().Bool("show-context", false, "print the web context block to stderr")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return fmt.Errorf("provide a message")
	}

	session, _ := cmd.Flags().GetString("session")
	materialPath, _ := cmd.Flags().GetString("material")
	showContext, _ := cmd.Flags().GetBool("show-context")

	chatCfg := cfg.Chat
	if system, _ := cmd.Flags().GetString("system"); system != "" {
		chatCfg.SystemContext = system
	}

	var material string
	if materialPath != "" {
		data, err := os.ReadFile(materialPath)
		if err != nil {
			return fmt.Errorf("reading material: %w", err)
		}
		material = string(data)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	agg, closeCache, err := newAggregator(ctx, cfg.Research)
	if err != nil {
		return err
	}
	defer closeCache()

	bridge := research.NewBridge(agg.Aggregate, cfg.Research.Workers)
	defer bridge.Close()

	var history chat.History
	if session != "" {
		store, err := chat.OpenStore(chatCfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()
		history = store
	}

	svc := chat.NewService(bridge, assistant.NewClaude(chatCfg.AIConfig, nil), history, chatCfg, log)
	reply, err := svc.Reply(ctx, session, message, material)
	if err != nil {
		return err
	}

	if showContext && reply.WebContext != "" {
		fmt.Fprint(os.Stderr, reply.WebContext)
	}
	fmt.Println(reply.Text)
	return nil
}
