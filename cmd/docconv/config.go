package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/docval/blobstore"
	miniostore "github.com/hupe1980/docval/blobstore/minio"
	s3store "github.com/hupe1980/docval/blobstore/s3"
	"github.com/hupe1980/docval/resource"
)

// Store kinds accepted in the config file.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinio = "minio"
)

// Config is the docconv configuration file.
//
// It only describes where "store:" inputs and outputs live; conversion
// options are always given as flags.
type Config struct {
	// Store selects the blob store for store:<name> arguments.
	Store StoreConfig `yaml:"store"`

	// Log configures diagnostics written to stderr.
	Log LogConfig `yaml:"log"`

	// Limits throttles store traffic.
	Limits LimitsConfig `yaml:"limits"`
}

// StoreConfig selects and configures a blob store.
type StoreConfig struct {
	// Kind is one of local, s3 or minio.
	// Default: local
	Kind string `yaml:"kind"`

	// Root is the directory of a local store.
	// Default: .
	Root string `yaml:"root"`

	// Bucket and Prefix locate documents in s3 and minio stores.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// Region overrides the AWS region from the environment (s3 only).
	Region string `yaml:"region"`

	// Endpoint is the S3-compatible endpoint. Required for minio, optional
	// for s3 (path-style addressing is used when set).
	Endpoint string `yaml:"endpoint"`

	// AccessKey and SecretKey are static credentials for minio. When empty
	// the MINIO_ACCESS_KEY/MINIO_SECRET_KEY environment variables are used.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Secure enables TLS for minio.
	Secure bool `yaml:"secure"`

	// CacheBytes keeps recently read documents in memory when positive.
	CacheBytes int64 `yaml:"cache_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: warn
	Level string `yaml:"level"`

	// JSON switches from text to JSON records.
	JSON bool `yaml:"json"`
}

// LimitsConfig maps onto resource.Config.
type LimitsConfig struct {
	IOBytesPerSec int64 `yaml:"io_bytes_per_sec"`
	MaxWorkers    int64 `yaml:"max_workers"`
	MemoryBytes   int64 `yaml:"memory_bytes"`
}

// DefaultConfig returns the configuration used without --config.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Kind: StoreLocal,
			Root: ".",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig. ${VAR} references
// in the file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the store settings.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreLocal:
	case StoreS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for kind %q", c.Store.Kind)
		}
	case StoreMinio:
		if c.Store.Bucket == "" || c.Store.Endpoint == "" {
			return fmt.Errorf("store.bucket and store.endpoint are required for kind %q", c.Store.Kind)
		}
	default:
		return fmt.Errorf("unknown store.kind %q", c.Store.Kind)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// ResourceConfig returns the limits as a resource.Config.
func (c *Config) ResourceConfig() resource.Config {
	return resource.Config{
		IOLimitBytesPerSec: c.Limits.IOBytesPerSec,
		MaxWorkers:         c.Limits.MaxWorkers,
		MemoryLimitBytes:   c.Limits.MemoryBytes,
	}
}

// OpenStore creates the blob store described by c.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	sc := c.Store
	switch sc.Kind {
	case StoreLocal, "":
		root := sc.Root
		if root == "" {
			root = "."
		}
		return blobstore.NewLocalStore(root), nil

	case StoreS3:
		var optFns []func(*awsconfig.LoadOptions) error
		if sc.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(sc.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if sc.Endpoint != "" {
				o.BaseEndpoint = aws.String(sc.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, sc.Bucket, sc.Prefix), nil

	case StoreMinio:
		creds := credentials.NewEnvMinio()
		if sc.AccessKey != "" {
			creds = credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, "")
		}
		client, err := minio.New(sc.Endpoint, &minio.Options{
			Creds:  creds,
			Secure: sc.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		return miniostore.NewStore(client, sc.Bucket, sc.Prefix), nil
	}
	return nil, fmt.Errorf("unknown store.kind %q", sc.Kind)
}
