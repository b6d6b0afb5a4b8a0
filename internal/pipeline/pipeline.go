// Package pipeline orchestrates the bronze-layer ETL run: download the
// annual CSV exports, load them into memory, encode each to Parquet, upload
// to the object store, then list the bucket to confirm.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/laranjao/datalake-etl/internal/config"
	"github.com/laranjao/datalake-etl/internal/convert"
	"github.com/laranjao/datalake-etl/internal/table"
)

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Store uploads a year's Parquet bytes and lists the bucket's keys.
type Store interface {
	Upload(ctx context.Context, year string, body []byte) (string, error)
	List(ctx context.Context) ([]string, error)
}

// Pipeline runs the ETL steps sequentially.
type Pipeline struct {
	cfg     *config.Config
	log     zerolog.Logger
	fetcher Fetcher
	store   Store
}

// New returns a Pipeline over the given fetcher and store.
func New(cfg *config.Config, log zerolog.Logger, fetcher Fetcher, store Store) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, fetcher: fetcher, store: store}
}

// Run executes one full pass. Download failures are logged and the run
// continues; every other failure aborts. In particular a failed download
// leaves a missing or partial file that the load step then fails on.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", p.cfg.DataDir, err)
	}

	tables, err := p.load(ctx)
	if err != nil {
		return err
	}

	if err := p.upload(ctx, tables); err != nil {
		return err
	}

	keys, err := p.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list bucket: %w", err)
	}
	p.log.Info().Strs("keys", keys).Int("count", len(keys)).Msg("bucket contents")

	return nil
}

// load downloads each source file and parses it into a table keyed by year.
// The parse runs even when the download failed, so a missing file surfaces
// there.
func (p *Pipeline) load(ctx context.Context) (map[string]*table.Table, error) {
	tables := make(map[string]*table.Table, len(p.cfg.Sources))

	for _, src := range p.cfg.Sources {
		dest := filepath.Join(p.cfg.DataDir, src.Filename)

		if err := p.fetcher.Fetch(ctx, src.URL, dest); err != nil {
			p.log.Error().Err(err).Str("file", src.Filename).Msg("download failed")
		} else {
			p.log.Info().Str("file", src.Filename).Msg("downloaded")
		}

		t, err := table.Load(dest)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Filename, err)
		}
		p.log.Info().Str("year", t.Year).Int("rows", t.RowCount()).Msg("loaded")

		tables[t.Year] = t
	}

	return tables, nil
}

// upload encodes each table to Parquet and writes it to the store, in
// year order so runs log deterministically.
func (p *Pipeline) upload(ctx context.Context, tables map[string]*table.Table) error {
	years := make([]string, 0, len(tables))
	for year := range tables {
		years = append(years, year)
	}
	sort.Strings(years)

	for _, year := range years {
		data, err := convert.Parquet(tables[year])
		if err != nil {
			return fmt.Errorf("encode %s: %w", year, err)
		}

		key, err := p.store.Upload(ctx, year, data)
		if err != nil {
			return fmt.Errorf("upload %s: %w", year, err)
		}
		p.log.Info().Str("key", key).Int("bytes", len(data)).Msg("uploaded")
	}

	return nil
}
