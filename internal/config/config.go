// Package config holds the pipeline configuration. Every value has a
// hard-coded default matching the original ingestion job, so the binary runs
// with no configuration present; scalars can be overridden through an
// optional etl.yaml or ETL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Source describes one annual CSV to ingest: where to fetch it from and the
// local filename to store it under.
type Source struct {
	URL      string
	Filename string
}

// Config is the full pipeline configuration.
type Config struct {
	// DataDir is the local directory the CSV files are downloaded into.
	DataDir string

	// Bucket is the destination S3 bucket.
	Bucket string

	// Region is the AWS region of the bucket.
	Region string

	// AccessKeyID and SecretAccessKey are static AWS credentials. When
	// AccessKeyID is left at its placeholder default the SDK's default
	// credential chain is used instead.
	AccessKeyID     string
	SecretAccessKey string

	// Prefix is the object-key prefix for uploaded Parquet files.
	Prefix string

	// Sources is the fixed list of annual CSV files, one per year 2015-2020.
	Sources []Source
}

// Placeholder credential values. The operator must supply real ones.
const (
	PlaceholderAccessKeyID     = "YOUR_AWS_ACCESS_KEY_ID"
	PlaceholderSecretAccessKey = "YOUR_AWS_SECRET_ACCESS_KEY"
)

const datasetBase = "https://data.boston.gov/dataset/8048697b-ad64-4bfc-b090-ee00169f2323/resource"

// DefaultSources returns the fixed Boston 311 service-request exports,
// one per year 2015-2020.
func DefaultSources() []Source {
	return []Source{
		{datasetBase + "/c9509ab4-6f6d-4b97-979a-0cf2a10c922b/download/311_service_requests_2015.csv", "dados_2015.csv"},
		{datasetBase + "/b7ea6b1b-3ca4-4c5b-9713-6dc1db52379a/download/311_service_requests_2016.csv", "dados_2016.csv"},
		{datasetBase + "/30022137-709d-465e-baae-ca155b51927d/download/311_service_requests_2017.csv", "dados_2017.csv"},
		{datasetBase + "/2be28d90-3a90-4af1-a3f6-f28c1e25880a/download/311_service_requests_2018.csv", "dados_2018.csv"},
		{datasetBase + "/ea2e4696-4a2d-429c-9807-d02eb92e0222/download/311_service_requests_2019.csv", "dados_2019.csv"},
		{datasetBase + "/6ff6a6fd-3141-4440-a880-6f60a37fe789/download/script_105774672_20210108153400_combine.csv", "dados_2020.csv"},
	}
}

// Load reads the configuration. An etl.yaml next to the binary or in the
// working directory overrides defaults; ETL_* environment variables override
// both (ETL_BUCKET, ETL_REGION, ETL_ACCESS_KEY_ID, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", "../data")
	v.SetDefault("bucket", "laranjao-datalakeaws")
	v.SetDefault("region", "us-east-2")
	v.SetDefault("access_key_id", PlaceholderAccessKeyID)
	v.SetDefault("secret_access_key", PlaceholderSecretAccessKey)
	v.SetDefault("prefix", "bronze")

	v.SetConfigName("etl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("etl")
	v.AutomaticEnv()

	cfg := &Config{
		DataDir:         v.GetString("data_dir"),
		Bucket:          v.GetString("bucket"),
		Region:          v.GetString("region"),
		AccessKeyID:     v.GetString("access_key_id"),
		SecretAccessKey: v.GetString("secret_access_key"),
		Prefix:          strings.Trim(v.GetString("prefix"), "/"),
		Sources:         DefaultSources(),
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket must not be empty")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	return cfg, nil
}

// HasStaticCredentials reports whether real static credentials were supplied.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKeyID != "" && c.AccessKeyID != PlaceholderAccessKeyID &&
		c.SecretAccessKey != "" && c.SecretAccessKey != PlaceholderSecretAccessKey
}
