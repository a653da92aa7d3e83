package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/essalab/essa/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
)

// DefaultWorkers is the default number of concurrent scan workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for an analysis run.
// This struct remains the "final, validated" config.
type Config struct {
	StructurePath string
	Title         string

	ENM    schema.ENMKind
	NModes int
	Cutoff float64 // 0 = per-kind default
	Gamma  float64

	Ligand     string
	LigandDist float64

	Workers     int
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	OutDir      string
	Save        bool
	NoCache     bool
	Width       int // Terminal width override (0 = auto-detect)

	FpocketPath string
	PocketDir   string // Pre-existing detector output dir, skips invocation

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	StructurePathStr string

	ENM            string  `mapstructure:"enm"`
	NModes         int     `mapstructure:"n-modes"`
	Cutoff         float64 `mapstructure:"cutoff"`
	Gamma          float64 `mapstructure:"gamma"`
	Ligand         string  `mapstructure:"lig"`
	LigandDist     float64 `mapstructure:"dist"`
	Workers        int     `mapstructure:"workers"`
	Limit          int     `mapstructure:"limit"`
	Precision      int     `mapstructure:"precision"`
	Output         string  `mapstructure:"output"`
	OutputFile     string  `mapstructure:"output-file"`
	OutDir         string  `mapstructure:"out-dir"`
	Save           bool    `mapstructure:"save"`
	NoCache        bool    `mapstructure:"no-cache"`
	Width          int     `mapstructure:"width"`
	FpocketPath    string  `mapstructure:"fpocket"`
	PocketDir      string  `mapstructure:"pocket-dir"`
	StoreBackend   string  `mapstructure:"store-backend"`
	StoreDBConnect string  `mapstructure:"store-db-connect"`
	Color          string  `mapstructure:"color"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate converts the raw input into a validated Config.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if input.StructurePathStr == "" {
		return fmt.Errorf("a structure file is required")
	}
	if _, err := os.Stat(input.StructurePathStr); err != nil {
		return fmt.Errorf("structure file %q not readable: %w", input.StructurePathStr, err)
	}
	cfg.StructurePath = input.StructurePathStr
	cfg.Title = titleFromPath(input.StructurePathStr)

	enm := schema.ENMKind(strings.ToLower(input.ENM))
	if enm == "" {
		enm = schema.GNM
	}
	if _, ok := schema.ValidENMKinds[enm]; !ok {
		return fmt.Errorf("invalid model kind %q: must be gnm or anm", input.ENM)
	}
	cfg.ENM = enm

	cfg.NModes = input.NModes
	if cfg.NModes == 0 {
		cfg.NModes = schema.DefaultNModes
	}
	if cfg.NModes < 1 {
		return fmt.Errorf("n-modes must be at least 1, got %d", cfg.NModes)
	}

	if input.Cutoff < 0 {
		return fmt.Errorf("cutoff must be non-negative, got %g", input.Cutoff)
	}
	cfg.Cutoff = input.Cutoff

	cfg.Gamma = input.Gamma
	if cfg.Gamma == 0 {
		cfg.Gamma = schema.DefaultGamma
	}
	if cfg.Gamma < 0 {
		return fmt.Errorf("gamma must be positive, got %g", cfg.Gamma)
	}

	cfg.Ligand = strings.TrimSpace(input.Ligand)
	if cfg.Ligand != "" {
		if _, err := schema.ParseLigandSpec(cfg.Ligand); err != nil {
			return err
		}
	}
	cfg.LigandDist = input.LigandDist
	if cfg.LigandDist == 0 {
		cfg.LigandDist = schema.DefaultLigandDist
	}
	if cfg.LigandDist < 0 {
		return fmt.Errorf("dist must be positive, got %g", cfg.LigandDist)
	}

	cfg.Workers = input.Workers
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	cfg.ResultLimit = input.Limit
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if cfg.ResultLimit > MaxResultLimit {
		cfg.ResultLimit = MaxResultLimit
	}

	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		cfg.Precision = DefaultPrecision
	}

	out := schema.OutputMode(strings.ToLower(input.Output))
	if out == "" {
		out = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[out]; !ok {
		return fmt.Errorf("invalid output mode %q: must be text, csv, json or parquet", input.Output)
	}
	cfg.Output = out
	cfg.OutputFile = input.OutputFile

	cfg.OutDir = input.OutDir
	if cfg.OutDir == "" {
		cfg.OutDir = cfg.Title + "_essa"
	}
	cfg.Save = input.Save
	cfg.NoCache = input.NoCache
	cfg.Width = input.Width

	cfg.FpocketPath = input.FpocketPath
	cfg.PocketDir = input.PocketDir

	backend := schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", input.StoreBackend)
	}
	if err := ValidateDatabaseConnectionString(backend, input.StoreDBConnect); err != nil {
		return err
	}
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = input.StoreDBConnect

	cfg.UseColors = parseBoolish(input.Color, true)

	return nil
}

// ValidateDatabaseConnectionString checks that server backends carry a
// connection string; sqlite and none work without one.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if strings.TrimSpace(connStr) == "" {
			return fmt.Errorf("%s backend requires a connection string", backend)
		}
	}
	return nil
}

// GetStoreDBFilePath returns the default SQLite file path for the scan store.
func GetStoreDBFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".essa-store.db"
	}
	return filepath.Join(home, ".essa-store.db")
}

// titleFromPath derives the structure title from its file name, e.g.
// "data/1abc.pdb" -> "1abc".
func titleFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return "structure"
	}
	return base
}

// parseBoolish accepts yes/no/true/false/1/0 with a fallback default.
func parseBoolish(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true
	case "no", "false", "0", "off":
		return false
	default:
		return def
	}
}
