package main

import (
	"fmt"

	"github.com/hyperjump/autosuggest/internal/config"
	"github.com/hyperjump/autosuggest/internal/extract"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/indexer"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/schema"
	"github.com/hyperjump/autosuggest/internal/search"
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/termindex"
	"github.com/hyperjump/autosuggest/pkg/utils"
	"go.uber.org/zap"
)

// Components holds initialized services.
type Components struct {
	Feature *feature.Feature
	Schema  schema.IndexSchema
	Storage storage.Storage
	Index   *keyword.BleveIndex
	Terms   *termindex.Dictionary
	Engine  *search.Engine
	Indexer *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

// initializeFeature builds the feature from config and computes the augmented schema.
// It opens nothing on disk, so commands that only report settings can use it while the
// server holds the index.
func initializeFeature(cfg *config.Config, logger *zap.Logger) (*feature.Feature, schema.IndexSchema, error) {
	settings, err := feature.SettingsFromConfig(cfg.Autosuggest)
	if err != nil {
		return nil, schema.IndexSchema{}, fmt.Errorf("invalid autosuggest settings: %w", err)
	}
	feat := feature.New(settings, feature.WithLogger(utils.ComponentLogger(logger, "feature")))

	base, err := schema.LoadFile(cfg.Autosuggest.BaseSchemaPath)
	if err != nil {
		return nil, schema.IndexSchema{}, err
	}
	augmented, err := feat.Mapping(base)
	if err != nil {
		return nil, schema.IndexSchema{}, fmt.Errorf("failed to augment schema: %w", err)
	}
	return feat, augmented, nil
}

// initializeComponents opens storage and the suggest index and wires the engine and
// indexer. Callers run Indexer.Sync (or Reindex) before serving suggestions.
func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	feat, augmented, err := initializeFeature(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	index, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath, augmented, schema.BleveOptions{
		MinGram: cfg.Autosuggest.MinGram,
		MaxGram: cfg.Autosuggest.MaxGram,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize suggest index: %w", err)
	}
	logger.Info("suggest index opened",
		zap.String("path", cfg.Storage.BleveIndexPath),
		zap.Bool("needs_reindex", index.NeedsReindex()))

	terms := termindex.New()
	engine := search.NewEngine(index, terms, feat,
		search.WithCorrector(keyword.NewCorrector(index)),
		search.WithLogger(utils.ComponentLogger(logger, "search")),
	)

	idxOpts := []indexer.Option{indexer.WithExtensions(cfg.Watch.Extensions)}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(utils.ComponentLogger(logger, "indexer")))
	}
	idx := indexer.New(store, index, terms, feat, extract.NewExtractor(), idxOpts...)

	return &Components{
		Feature: feat,
		Schema:  augmented,
		Storage: store,
		Index:   index,
		Terms:   terms,
		Engine:  engine,
		Indexer: idx,
	}, nil
}
