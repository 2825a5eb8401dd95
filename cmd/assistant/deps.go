// cmd/assistant/deps.go
package main

import (
	"context"
	"fmt"
	"time"

	"estate-assistant/internal/assistant"
	"estate-assistant/internal/common/config"
	"estate-assistant/internal/common/database"
	"estate-assistant/internal/inventory"
	"estate-assistant/internal/providers/huggingface"
	"estate-assistant/internal/providers/openai"
	"estate-assistant/internal/server"
)

// deps holds everything built from config and the resources to release on exit.
type deps struct {
	engine    *assistant.Engine
	inventory *inventory.Store
	checks    []server.Check
	closers   []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn("failed to release resource", map[string]interface{}{"error": err.Error()})
		}
	}
}

func newSelector(cfg *config.Config) (*assistant.Selector, error) {
	registry, err := assistant.NewRegistry(
		huggingface.New(huggingface.ConfigFrom(cfg.Providers.HuggingFace), log),
		openai.New(openai.ConfigFrom(cfg.Providers.OpenAI), log),
	)
	if err != nil {
		return nil, err
	}
	return assistant.NewSelector(registry, cfg.Assistant.DefaultProvider)
}

// buildDeps wires the engine and, when enabled, Redis and Postgres.
// withStores=false skips external stores for one-shot commands.
func buildDeps(ctx context.Context, cfg *config.Config, withStores bool) (*deps, error) {
	d := &deps{}

	selector, err := newSelector(cfg)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}

	bank, err := assistant.LoadTemplates(cfg.Assistant.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	var cache assistant.ReplyCache
	if withStores && cfg.Assistant.Cache.Enabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis not reachable, reply cache errors will be ignored", map[string]interface{}{"error": err.Error()})
		}
		d.closers = append(d.closers, rdb.Close)
		d.checks = append(d.checks, server.Check{Name: "redis", Probe: rdb.Ping})
		cache = assistant.NewRedisCache(rdb.Client, time.Duration(cfg.Assistant.Cache.TTL)*time.Second, cfg.Assistant.Cache.Prefix)
	}

	if withStores && cfg.Database.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			d.Close()
			return nil, err
		}
		if err := pg.Ping(ctx); err != nil {
			log.Warn("postgres not reachable", map[string]interface{}{"error": err.Error()})
		}
		d.closers = append(d.closers, pg.Close)
		d.checks = append(d.checks, server.Check{Name: "postgres", Probe: pg.Ping})
		d.inventory = inventory.NewStore(pg.DB, log)
	}

	d.engine = assistant.NewEngine(
		assistant.EngineConfig{Timeout: config.GetDuration(cfg.Assistant.Timeout)},
		selector,
		assistant.NewRuleEngine(bank),
		cache,
		log,
	)
	return d, nil
}

// contextSource keeps a nil *inventory.Store from becoming a non-nil interface.
func (d *deps) contextSource() server.ContextSource {
	if d.inventory == nil {
		return nil
	}
	return d.inventory
}
