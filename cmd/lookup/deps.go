package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/activity"
	"github.com/daocha/blockchain-lookup/service/blockstream"
	"github.com/daocha/blockchain-lookup/service/classify"
	"github.com/daocha/blockchain-lookup/service/config"
	"github.com/daocha/blockchain-lookup/service/etherscan"
	"github.com/daocha/blockchain-lookup/service/hyperliquid"
	"github.com/daocha/blockchain-lookup/service/metadata"
	"github.com/daocha/blockchain-lookup/service/metrics"
	"github.com/daocha/blockchain-lookup/service/resolver"
	"github.com/daocha/blockchain-lookup/service/solana"
)

// deps bundles everything a command needs, built once per invocation from
// the environment.
type deps struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	solana      *solana.Client
	resolver    *resolver.Resolver
	aggregator  *activity.Aggregator
	hyperliquid *hyperliquid.Client
}

func buildDeps(c *cli.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(c.String("log-level"))
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	httpClient := newHTTPClient()

	solanaClient := solana.NewClient(solana.NewRPCClient(cfg.SolanaRPCURL), cfg.SolanaRPCURL, m, logger)
	res := resolver.New(solanaClient, httpClient, cfg.ResolverServiceURLs, m, logger)

	var md classify.MetadataLookup
	if cfg.MetadataURL != "" {
		md = metadata.NewClient(httpClient, cfg.MetadataURL, m, logger)
	}

	var ethFetcher activity.EthereumFetcher
	if cfg.EtherscanAPIKey != "" {
		ethFetcher = etherscan.NewClient(httpClient, cfg.EtherscanURL, cfg.EtherscanAPIKey, m, logger)
	} else {
		logger.Warn("ETHERSCAN_API_KEY not set; ethereum activity is disabled")
	}

	aggregator := activity.New(activity.Config{
		Resolver:           res,
		Solana:             solanaClient,
		Ethereum:           ethFetcher,
		Bitcoin:            blockstream.NewClient(httpClient, cfg.BlockstreamURL, m, logger),
		SolanaClassifier:   classify.NewSolana(md, logger),
		EthereumClassifier: classify.NewEthereum(md, logger),
		BitcoinClassifier:  classify.NewBitcoin(logger),
		Metrics:            m,
		Logger:             logger,
		Limit:              cfg.ActivityLimit,
	})

	return &deps{
		cfg:         cfg,
		logger:      logger,
		metrics:     m,
		registry:    registry,
		solana:      solanaClient,
		resolver:    res,
		aggregator:  aggregator,
		hyperliquid: hyperliquid.NewClient(cfg.HyperliquidURL, m, logger),
	}, nil
}
