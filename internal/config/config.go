package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DataPaths locates the catalog inside the repository working copy. Relative
// paths are resolved against Config.RepoPath by Load.
type DataPaths struct {
	ApplicationsRoot   string `yaml:"applications_root"`
	Components         string `yaml:"components"`
	Substitutes        string `yaml:"substitutes"`
	IngressAnnotations string `yaml:"ingress_annotations"`
}

// DefaultDataPaths returns the layout used when no config file overrides it.
func DefaultDataPaths() DataPaths {
	return DataPaths{
		ApplicationsRoot:   "apps",
		Components:         filepath.Join("metadatas", "components.yaml"),
		Substitutes:        filepath.Join("metadatas", "substitutes.yaml"),
		IngressAnnotations: filepath.Join("metadatas", "ingress_annotations.yaml"),
	}
}

type Config struct {
	RepoPath   string    // DECK_REPO_PATH (default "./data")
	RepoURL    string    // DECK_REPO_URL (optional; cloned into RepoPath when missing)
	ConfigFile string    // DECK_CONFIG (default "<repo>/deck.yaml" when present)
	DataPaths  DataPaths // data_paths section of ConfigFile, resolved against RepoPath

	HTTPAddr   string // DECK_HTTP_ADDR (default ":8080")
	GRPCAddr   string // DECK_GRPC_ADDR (default ":9090"; "off" = disabled)
	AuthToken  string // DECK_AUTH_TOKEN (optional, empty = auth disabled)
	NATSURL    string // DECK_NATS_URL (optional, empty = no events)
	AuditDBURL string // DECK_AUDIT_DATABASE_URL (optional, empty = no audit log)
	LogLevel   string // DECK_LOG_LEVEL (default "info")
	LogFormat  string // DECK_LOG_FORMAT (default "text"; "json")

	WatchCatalog bool // DECK_WATCH_CATALOG (default true): report on-disk edits as events

	// Backup settings
	BackupInterval   time.Duration // DECK_BACKUP_INTERVAL (default 3m; 0 = disabled)
	BackupS3Bucket   string        // DECK_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // DECK_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // DECK_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key      string        // DECK_BACKUP_S3_KEY (default "appdeck/catalog.jsonl")
	BackupGitRepo    string        // DECK_BACKUP_GIT_REPO (enables git when set; path to clone)
	BackupGitFile    string        // DECK_BACKUP_GIT_FILE (default "catalog.jsonl")
	BackupGitBranch  string        // DECK_BACKUP_GIT_BRANCH (default "main")
}

// fileConfig is the shape of the optional YAML config file.
type fileConfig struct {
	DataPaths DataPaths `yaml:"data_paths"`
}

func Load() (*Config, error) {
	c := &Config{
		RepoPath:         envOrDefault("DECK_REPO_PATH", "./data"),
		RepoURL:          os.Getenv("DECK_REPO_URL"),
		ConfigFile:       os.Getenv("DECK_CONFIG"),
		HTTPAddr:         envOrDefault("DECK_HTTP_ADDR", ":8080"),
		GRPCAddr:         envOrDefault("DECK_GRPC_ADDR", ":9090"),
		AuthToken:        os.Getenv("DECK_AUTH_TOKEN"),
		NATSURL:          os.Getenv("DECK_NATS_URL"),
		AuditDBURL:       os.Getenv("DECK_AUDIT_DATABASE_URL"),
		LogLevel:         envOrDefault("DECK_LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("DECK_LOG_FORMAT", "text"),
		BackupS3Bucket:   os.Getenv("DECK_BACKUP_S3_BUCKET"),
		BackupS3Endpoint: os.Getenv("DECK_BACKUP_S3_ENDPOINT"),
		BackupS3Region:   envOrDefault("DECK_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Key:      envOrDefault("DECK_BACKUP_S3_KEY", "appdeck/catalog.jsonl"),
		BackupGitRepo:    os.Getenv("DECK_BACKUP_GIT_REPO"),
		BackupGitFile:    envOrDefault("DECK_BACKUP_GIT_FILE", "catalog.jsonl"),
		BackupGitBranch:  envOrDefault("DECK_BACKUP_GIT_BRANCH", "main"),
	}
	watch, err := strconv.ParseBool(envOrDefault("DECK_WATCH_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("DECK_WATCH_CATALOG: %w", err)
	}
	c.WatchCatalog = watch

	if strings.EqualFold(c.GRPCAddr, "off") {
		c.GRPCAddr = ""
	}

	intervalStr := envOrDefault("DECK_BACKUP_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("DECK_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("DECK_LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("DECK_LOG_FORMAT: unknown format %q", c.LogFormat)
	}

	paths, err := loadDataPaths(c)
	if err != nil {
		return nil, err
	}
	c.DataPaths = paths.resolve(c.RepoPath)

	return c, nil
}

// loadDataPaths reads the data_paths section of the config file, filling
// unset keys with defaults. An explicitly configured file must exist; the
// implicit <repo>/deck.yaml is optional.
func loadDataPaths(c *Config) (DataPaths, error) {
	paths := DefaultDataPaths()

	file := c.ConfigFile
	explicit := file != ""
	if !explicit {
		file = filepath.Join(c.RepoPath, "deck.yaml")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return paths, nil
		}
		return paths, fmt.Errorf("read config %s: %w", file, err)
	}
	c.ConfigFile = file

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return paths, fmt.Errorf("parse config %s: %w", file, err)
	}
	paths.merge(fc.DataPaths)
	return paths, nil
}

func (p *DataPaths) merge(o DataPaths) {
	if o.ApplicationsRoot != "" {
		p.ApplicationsRoot = o.ApplicationsRoot
	}
	if o.Components != "" {
		p.Components = o.Components
	}
	if o.Substitutes != "" {
		p.Substitutes = o.Substitutes
	}
	if o.IngressAnnotations != "" {
		p.IngressAnnotations = o.IngressAnnotations
	}
}

func (p DataPaths) resolve(base string) DataPaths {
	abs := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
	return DataPaths{
		ApplicationsRoot:   abs(p.ApplicationsRoot),
		Components:         abs(p.Components),
		Substitutes:        abs(p.Substitutes),
		IngressAnnotations: abs(p.IngressAnnotations),
	}
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
