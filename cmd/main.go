// Command nova runs the crypto investment assistant either as a terminal chat
// or as an HTTP/WebSocket server.
//
// Usage:
//
//	nova --user alice
//	nova --config nova.yaml --mode web --addr :8080
//
// Environment variables (optionally from .env):
//
//	ANTHROPIC_API_KEY  for the anthropic provider (default)
//	LLM_API_KEY        for the openai provider
//	EXA_API_KEY        search fallback and project research
//	COINGECKO_API_KEY  optional CoinGecko demo key
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/nova/config"
	"github.com/vadiminshakov/nova/internal/clients"
	"github.com/vadiminshakov/nova/internal/repl"
	"github.com/vadiminshakov/nova/internal/services/chat"
	"github.com/vadiminshakov/nova/internal/services/pricer"
	"github.com/vadiminshakov/nova/internal/services/ratelimit"
	"github.com/vadiminshakov/nova/internal/storage/sqlstore"
	"github.com/vadiminshakov/nova/internal/storage/turns"
	"github.com/vadiminshakov/nova/internal/web"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Get(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("caught signal, shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
			return
		}
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("nova stopped", zap.Error(err))
	}
}

// newLogger picks a development logger for --debug. The REPL logs errors only
// so that log lines do not mix with the conversation.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Mode == config.ModeREPL {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	}
	return zcfg.Build()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	store, err := sqlstore.Open(cfg.Storage.SQLitePath, logger)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close()

	journal, err := turns.NewWALStore(cfg.Storage.JournalDir)
	if err != nil {
		return errors.Wrap(err, "open turn journal")
	}
	defer journal.Close()

	quotes, err := pricer.NewQuoteCache(cfg.Prices.CacheTTL)
	if err != nil {
		return err
	}
	defer quotes.Close()

	limiter := ratelimit.New(cfg.Prices.MinInterval)
	prices := pricer.NewCaching(
		pricer.NewCoinGecko(cfg.Prices.BaseURL, cfg.Prices.APIKey, cfg.Prices.Timeout, limiter, logger),
		quotes,
	)

	svc, err := chat.NewService(chat.Deps{
		Store:   store,
		LLM:     newLLM(cfg, logger),
		Search:  clients.NewExaClient(cfg.Search.BaseURL, cfg.Search.APIKey, logger),
		Prices:  prices,
		Cache:   prices,
		Journal: journal,
	}, chat.Options{
		HistoryLimit:   cfg.Chat.HistoryLimit,
		KnowledgeLimit: cfg.Chat.KnowledgeLimit,
		SearchResults:  cfg.Search.Results,
		Research:       cfg.Chat.Research,
		Bands:          &cfg.Prices.Bands,
	}, logger)
	if err != nil {
		return err
	}

	if cfg.Mode == config.ModeREPL {
		return repl.New(svc, logger).Run(ctx, cfg.Username)
	}

	server := web.NewServer(cfg.Web.Addr, svc, journal, logger)
	logger.Info("starting", zap.String("mode", cfg.Mode), zap.String("addr", cfg.Web.Addr))
	if len(cfg.Web.TLSDomains) > 0 {
		return server.StartWithAutoTLS(ctx, cfg.Web.TLSDomains, cfg.Web.CertCacheDir)
	}
	return server.Start(ctx)
}

func newLLM(cfg config.Config, logger *zap.Logger) clients.LLMClient {
	if cfg.LLM.Provider == config.ProviderOpenAI {
		return clients.NewOpenAICompatibleClient(cfg.LLM.APIURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Timeout, logger)
	}
	return clients.NewAnthropicClient(cfg.LLM.APIKey, "", cfg.LLM.Model, cfg.LLM.MaxTokens, cfg.LLM.Timeout, logger)
}
