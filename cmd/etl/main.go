// Command etl runs the Boston 311 bronze-layer ingestion once: download the
// annual CSV exports, convert each to Parquet, upload to S3, then list the
// bucket. It takes no arguments; see internal/config for overrides.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/laranjao/datalake-etl/internal/config"
	"github.com/laranjao/datalake-etl/internal/extract"
	"github.com/laranjao/datalake-etl/internal/pipeline"
	"github.com/laranjao/datalake-etl/internal/storage"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create s3 client")
	}

	log.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Int("sources", len(cfg.Sources)).
		Msg("starting bronze ingestion")

	p := pipeline.New(cfg, log, extract.New(extract.Options{}), store)
	if err := p.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	log.Info().Msg("bronze ingestion complete")
}
