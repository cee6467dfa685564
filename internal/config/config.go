package config

import (
	"errors"
	"io/fs"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string // empty disables the health endpoint

	Env    string // "dev" | "prod"
	Store  string // "memory" | "sqlite" | "postgres"
	DBPath string // e.g. "./data/harborlog.db"
	PGURL  string

	Location  *time.Location
	RangeDays int
	MaxBars   int
	VocabPath string

	// Staff maps lowercased email → display name.
	Staff map[string]string

	RetentionDays      int // 0 = keep forever
	PruneIntervalHours int

	LogLevel string

	// Warnings lists problems that were tolerated while loading.
	Warnings []string
}

// rawEnv mirrors the environment. Numbers stay strings so a bad value falls
// back to its default instead of failing the whole parse.
type rawEnv struct {
	HTTPAddr      string `env:"HARBORLOG_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string `env:"HARBORLOG_GRPC_ADDR" envDefault:":8081"`
	Env           string `env:"HARBORLOG_ENV" envDefault:"dev"`
	Store         string `env:"HARBORLOG_STORE" envDefault:"sqlite"`
	DBPath        string `env:"HARBORLOG_DB_PATH" envDefault:"./data/harborlog.db"`
	PGURL         string `env:"HARBORLOG_PG_URL"`
	DatabaseURL   string `env:"DATABASE_URL"`
	TZ            string `env:"HARBORLOG_TZ"`
	RangeDays     string `env:"HARBORLOG_RANGE_DAYS"`
	MaxBars       string `env:"HARBORLOG_MAX_BARS"`
	VocabPath     string `env:"HARBORLOG_VOCAB_PATH"`
	Staff         string `env:"HARBORLOG_STAFF"`
	RetentionDays string `env:"HARBORLOG_RETENTION_DAYS"`
	PruneInterval string `env:"HARBORLOG_PRUNE_INTERVAL_HOURS"`
	LogLevel      string `env:"HARBORLOG_LOG_LEVEL" envDefault:"info"`
}

// FromEnv loads ./.env when present, then reads the process environment.
// Variables already set in the environment win over the file.
func FromEnv() Config {
	return Load(".env")
}

// Load is FromEnv with an explicit dotenv path. A missing file is ignored.
func Load(envFile string) Config {
	var warnings []string
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			warnings = append(warnings, "dotenv: "+err.Error())
		}
	}

	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		warnings = append(warnings, "parse env: "+err.Error())
	}

	mode := strings.ToLower(strings.TrimSpace(raw.Env))
	if mode != "dev" && mode != "prod" {
		// fail-soft: treat unknown as dev
		mode = "dev"
	}

	st := strings.ToLower(strings.TrimSpace(raw.Store))
	switch st {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		st = StoreSQLite
	}

	pgURL := strings.TrimSpace(raw.PGURL)
	if pgURL == "" {
		pgURL = strings.TrimSpace(raw.DatabaseURL)
	}

	grpcAddr := strings.TrimSpace(raw.GRPCAddr)
	if strings.EqualFold(grpcAddr, "off") {
		grpcAddr = ""
	}

	return Config{
		HTTPAddr: defaultString(raw.HTTPAddr, ":8080"),
		GRPCAddr: grpcAddr,

		Env:    mode,
		Store:  st,
		DBPath: defaultString(raw.DBPath, "./data/harborlog.db"),
		PGURL:  pgURL,

		Location:  ParseLocation(raw.TZ),
		RangeDays: positiveInt(raw.RangeDays, 14),
		MaxBars:   positiveInt(raw.MaxBars, 8),
		VocabPath: strings.TrimSpace(raw.VocabPath),

		Staff: ParseStaff(raw.Staff),

		RetentionDays:      nonNegativeInt(raw.RetentionDays, 0),
		PruneIntervalHours: positiveInt(raw.PruneInterval, 6),

		LogLevel: strings.ToLower(defaultString(raw.LogLevel, "info")),

		Warnings: warnings,
	}
}

// ParseLocation loads an IANA zone name; empty or unknown names give Local.
func ParseLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// ParseStaff reads "Name <email>" entries separated by ';'. Entries without a
// parseable address are skipped; a bare address maps to itself.
func ParseStaff(v string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(v, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		addr, err := mail.ParseAddress(part)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(addr.Name)
		if name == "" {
			name = addr.Address
		}
		out[strings.ToLower(addr.Address)] = name
	}
	return out
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func nonNegativeInt(v string, def int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func positiveInt(v string, def int) int {
	n := nonNegativeInt(v, def)
	if n == 0 {
		return def
	}
	return n
}
