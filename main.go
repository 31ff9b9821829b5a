package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	inventoryx "github.com/kridsada/agentdesk/agent/agents/inventory"
	routerx "github.com/kridsada/agentdesk/agent/agents/router"
	searchx "github.com/kridsada/agentdesk/agent/agents/search"
	weathertimex "github.com/kridsada/agentdesk/agent/agents/weathertime"
	classifyx "github.com/kridsada/agentdesk/agent/classify"
	registryx "github.com/kridsada/agentdesk/agent/registry"
	configx "github.com/kridsada/agentdesk/pkg/config"
	_ "github.com/kridsada/agentdesk/pkg/logger/autoload"
	openmeteox "github.com/kridsada/agentdesk/pkg/openmeteo"
	openrouterx "github.com/kridsada/agentdesk/pkg/openrouter"
	websearchx "github.com/kridsada/agentdesk/pkg/websearch"
	serverx "github.com/kridsada/agentdesk/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := newInventoryStore(ctx)
	inventoryAgent, err := inventoryx.New(store)
	if err != nil {
		log.Fatal().Err(err).Msg("init inventory agent")
	}

	searchCfg := configx.MustNew[websearchx.Config]("SEARXNG")
	searchClient, err := websearchx.NewClient(*searchCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init search client")
	}
	searchAgent, err := searchx.New(searchClient)
	if err != nil {
		log.Fatal().Err(err).Msg("init search agent")
	}

	meteoCfg := configx.MustNew[openmeteox.Config]("OPENMETEO")
	meteoClient, err := openmeteox.NewClient(*meteoCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init weather client")
	}
	weatherAgent, err := weathertimex.New(meteoClient)
	if err != nil {
		log.Fatal().Err(err).Msg("init weather-time agent")
	}

	registry, err := registryx.New(searchAgent, weatherAgent, inventoryAgent)
	if err != nil {
		log.Fatal().Err(err).Msg("register agents")
	}

	classifier, err := classifyx.New(newScorer(), *configx.MustNew[classifyx.Config]("CLASSIFY"))
	if err != nil {
		log.Fatal().Err(err).Msg("init classifier")
	}

	router, err := routerx.New(registry, classifier, *configx.MustNew[routerx.Config]("ROUTER"))
	if err != nil {
		log.Fatal().Err(err).Msg("init router")
	}

	srv, err := serverx.New(router, registry, *configx.MustNew[serverx.Config]("SERVER"))
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("shutdown complete")
}

// newInventoryStore opens the PostgreSQL-backed store when a DSN is
// configured and falls back to the in-memory store otherwise.
func newInventoryStore(ctx context.Context) inventoryx.Store {
	cfg := configx.MustNew[inventoryx.BunStoreConfig]("INVENTORY")
	if cfg.DSN == "" {
		log.Info().Msg("no inventory dsn configured, using in-memory store")
		return inventoryx.NewMemoryStore()
	}

	store, err := inventoryx.NewBunStore(*cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open inventory store")
	}
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("init inventory schema")
	}
	log.Info().Msg("inventory store ready")
	return store
}

// newScorer prefers the model-backed scorer when OpenRouter credentials
// are present and otherwise falls back to keyword matching.
func newScorer() classifyx.Scorer {
	cfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if !cfg.Enabled() {
		log.Info().Msg("no openrouter credentials, using keyword scorer")
		return classifyx.NewKeywordScorer()
	}

	client := openrouterx.NewClient(*cfg)
	if client == nil {
		log.Fatal().Msg("failed to initialize openrouter client")
	}
	scorer, err := classifyx.NewLLMScorer(client, cfg.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("init llm scorer")
	}
	log.Info().Str("model", cfg.Model).Msg("using model-backed scorer")
	return scorer
}
