// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the learnbuddy CLI: web research for
// study questions and a chat assistant built on top of it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/internal/secrets"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state filled in by the root command before any subcommand runs.
var (
	cfg types.Config
	log *logging.Logger
)

// rootCmd is the base command for the learnbuddy CLI.
var rootCmd = &cobra.Command{
	Use:   "learnbuddy",
	Short: "Study assistant with multi-source web research",
	Long: `learnbuddy answers study questions. Messages that look informational are
researched across Wikipedia, DuckDuckGo, MusicBrainz, Wikidata, news feeds,
Reddit, and Open Library, and the findings are handed to the model together
with any study material.

Use research to inspect what the sources return for a query, classify to see
how a message is routed, and ask to run a full chat turn.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}

		l, err := logging.New(c.Log.Mode, c.Log.Level)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, l)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			l.Debug("loaded secrets", "keys", keys)
		}
		secrets.Apply(&c, s)

		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./learnbuddy.yaml or ~/.config/learnbuddy/learnbuddy.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files (anthropic-api-key, redis-password)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("learnbuddy")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "learnbuddy"))
		}
	}

	viper.SetEnvPrefix("LEARNBUDDY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
