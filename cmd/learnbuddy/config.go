// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

// setDefaults registers every configuration key with viper so environment
// variables such as LEARNBUDDY_RESEARCH_CACHE_BACKEND resolve even when no
// config file mentions the key.
func setDefaults(d types.Config) {
	r := d.Research
	viper.SetDefault("research.timeout", r.Timeout)
	viper.SetDefault("research.user_agent", r.UserAgent)
	viper.SetDefault("research.max_retries", r.MaxRetries)
	viper.SetDefault("research.cache.backend", string(r.Cache.Backend))
	viper.SetDefault("research.cache.ttl", r.Cache.TTL)
	viper.SetDefault("research.cache.capacity", r.Cache.Capacity)
	viper.SetDefault("research.cache.redis_addr", r.Cache.RedisAddr)
	viper.SetDefault("research.cache.redis_password", r.Cache.RedisPassword)
	viper.SetDefault("research.cache.redis_prefix", r.Cache.RedisPrefix)
	viper.SetDefault("research.max_results", r.MaxResults)
	viper.SetDefault("research.deadline", r.Deadline)
	viper.SetDefault("research.sequential", r.Sequential)
	viper.SetDefault("research.dedupe_inflight", r.DedupeInflight)
	viper.SetDefault("research.workers", r.Workers)
	viper.SetDefault("research.disable_news", r.DisableNews)

	c := d.Chat
	viper.SetDefault("chat.model", c.Model)
	viper.SetDefault("chat.api_key", c.APIKey)
	viper.SetDefault("chat.max_tokens", c.MaxTokens)
	viper.SetDefault("chat.max_retries", c.MaxRetries)
	viper.SetDefault("chat.timeout", c.Timeout)
	viper.SetDefault("chat.history_db", c.HistoryDB)
	viper.SetDefault("chat.history_turns", c.HistoryTurns)
	viper.SetDefault("chat.research_timeout", c.ResearchTimeout)
	viper.SetDefault("chat.system_context", c.SystemContext)

	viper.SetDefault("log.mode", d.Log.Mode)
	viper.SetDefault("log.level", d.Log.Level)
}

// loadConfig decodes the merged viper settings into a Config.
func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	c.Research = c.Research.WithDefaults()
	return c, nil
}

// httpClient returns the client shared by research sources. Each source
// applies its own per-request timeout.
func httpClient() *http.Client {
	return &http.Client{}
}
