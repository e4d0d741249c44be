package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/seo-tools/site-atlas/pkg/server"
	"github.com/seo-tools/site-atlas/pkg/services/charge"
	"github.com/seo-tools/site-atlas/pkg/services/config"
	"github.com/seo-tools/site-atlas/pkg/services/embedding"
	"github.com/seo-tools/site-atlas/pkg/services/insight"
	"github.com/seo-tools/site-atlas/pkg/services/reprocess"
	"github.com/seo-tools/site-atlas/pkg/services/sources"
	"github.com/seo-tools/site-atlas/pkg/store/duckdb"
	creditstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/credit"
	profilestore "github.com/seo-tools/site-atlas/pkg/store/duckdb/profile"
	rawstore "github.com/seo-tools/site-atlas/pkg/store/duckdb/rawdata"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the site-atlas web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "site-atlas.yaml",
		"Path to the site-atlas config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	rawStore, err := rawstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create raw-data store: %w", err)
	}
	creditStore, err := creditstore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create credit store: %w", err)
	}
	profileStore, err := profilestore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create profile store: %w", err)
	}

	registry := sources.NewRegistry()
	for _, op := range sources.Catalog() {
		adapter, err := sources.NewHTTPAdapter(sources.HTTPAdapterSettings{
			Source:  op.Name,
			BaseURL: cfg.Sources.BaseURL,
			APIKey:  cfg.Sources.APIKey,
			Timeout: cfg.FetchTimeout(),
			Retries: 2,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s adapter: %w", op.Name, err)
		}
		if err := registry.Register(op.Name, adapter); err != nil {
			return fmt.Errorf("failed to register %s adapter: %w", op.Name, err)
		}
	}

	charger, err := charge.NewService(db, creditStore, rawStore, registry, charge.Settings{
		FetchTimeout: cfg.FetchTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create charge service: %w", err)
	}

	var embedProvider embedding.Provider
	if cfg.Embedding.BaseURL != "" {
		provider, err := embedding.NewHTTPProvider(embedding.HTTPProviderSettings{
			Name:    "http-embedding",
			BaseURL: cfg.Embedding.BaseURL,
			APIKey:  cfg.Embedding.APIKey,
			Timeout: cfg.ProviderTimeout(),
		})
		if err != nil {
			return fmt.Errorf("failed to create embedding provider: %w", err)
		}
		embedProvider = provider
	} else {
		logger.Warn().Msg("no embedding provider configured; vectors will use the degraded hash fallback")
	}

	var insightProvider insight.Provider
	if cfg.Insight.BaseURL != "" {
		provider, err := insight.NewHTTPProvider(insight.HTTPProviderSettings{
			BaseURL: cfg.Insight.BaseURL,
			APIKey:  cfg.Insight.APIKey,
			Timeout: cfg.ProviderTimeout(),
		})
		if err != nil {
			return fmt.Errorf("failed to create insight provider: %w", err)
		}
		insightProvider = provider
	}

	processor, err := reprocess.NewService(rawStore, profileStore, insightProvider, embedProvider, reprocess.Settings{
		ProviderTimeout: cfg.ProviderTimeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create reprocess service: %w", err)
	}

	searcher, err := embedding.NewSearcher(profileStore)
	if err != nil {
		return fmt.Errorf("failed to create similarity searcher: %w", err)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("configuration loaded")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies: server.Dependencies{
			Charger:   charger,
			Processor: processor,
			Searcher:  searcher,
			Profiles:  profileStore,
			Raw:       rawStore,
			Credit:    creditStore,
			Logger:    logger,
		},
	})

	return api.Start()
}
