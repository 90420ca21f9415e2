package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"house-finder/models"
)

// Command names.
const (
	CommandList   = "list"
	CommandRemove = "remove"
)

// DefaultCategory is shown when list is run without a category.
const DefaultCategory = "available"

// categories maps a display category (English or the legacy Spanish
// name) to the statuses it shows.
var categories = map[string][]models.Status{
	"all":       {models.StatusNew, models.StatusActive, models.StatusRemoved},
	"new":       {models.StatusNew},
	"available": {models.StatusNew, models.StatusActive},
	"removed":   {models.StatusRemoved, models.StatusDiscarded},
	"discarded": {models.StatusDiscarded},

	"todas":       {models.StatusNew, models.StatusActive, models.StatusRemoved},
	"nuevas":      {models.StatusNew},
	"disponibles": {models.StatusNew, models.StatusActive},
	"removidas":   {models.StatusRemoved, models.StatusDiscarded},
	"descartadas": {models.StatusDiscarded},
}

// ParseCategory returns the statuses shown by the named category.
func ParseCategory(name string) (models.StatusSet, error) {
	statuses, ok := categories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown category %q (want all, new, available, removed or discarded)", name)
	}
	return models.NewStatusSet(statuses...), nil
}

// Config holds all application configuration.
type Config struct {
	StorePath string
	Backend   string
	ExportDir string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Fetcher        string
	MaxConcurrency int
	RateLimitMs    int
	MaxAttempts    int
	MaxPages       int
	RequestTimeout time.Duration
	UserAgent      string
	ChromeBin      string

	Browser bool
	Debug   bool

	Search SearchParams

	Command  string
	Category string
	Show     models.StatusSet
	RemoveID string
}

type searchOptions struct {
	Province         string `short:"p" long:"province" env:"SEARCH_PROVINCE" default:"cordoba" description:"Province the property is in"`
	MinPrice         int    `short:"d" long:"min-price" env:"SEARCH_MIN_PRICE" default:"35000" description:"Minimum price"`
	MaxPrice         int    `short:"u" long:"max-price" env:"SEARCH_MAX_PRICE" default:"70000" description:"Maximum price"`
	Currency         string `short:"m" long:"currency" env:"SEARCH_CURRENCY" default:"pesos" choice:"pesos" choice:"dolares" description:"Currency the price is in"`
	Operation        string `short:"o" long:"operation" env:"SEARCH_OPERATION" default:"alquileres" choice:"alquileres" choice:"ventas" description:"Operation type"`
	Bedrooms         int    `long:"bedrooms" env:"SEARCH_BEDROOMS" default:"3" description:"Number of bedrooms"`
	City             string `short:"c" long:"city" env:"SEARCH_CITY" description:"City the property is in"`
	NeighborhoodType string `short:"b" long:"neighborhood-type" env:"SEARCH_NEIGHBORHOOD_TYPE" choice:"abierto" choice:"country" choice:"cerrado" choice:"con-seguridad" description:"Neighborhood type"`
	Neighborhood     string `short:"B" long:"neighborhood" env:"SEARCH_NEIGHBORHOOD" description:"Neighborhood the property is in"`
	UnitType         string `short:"t" long:"unit-type" env:"SEARCH_UNIT_TYPE" choice:"casa" choice:"duplex" choice:"triplex" choice:"chalet" choice:"casa-quinta" choice:"Cabana" choice:"prefabricada" description:"Unit type"`
}

type listCommand struct {
	Args struct {
		Category string `positional-arg-name:"category" description:"all, new, available, removed or discarded"`
	} `positional-args:"yes"`
}

type removeCommand struct {
	Args struct {
		ID string `positional-arg-name:"id" description:"Listing id to discard" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

type rawConfig struct {
	StorePath string `short:"f" long:"store" env:"STORE_PATH" default:"listings.json" description:"History file of the json backend"`
	Backend   string `long:"backend" env:"STORE_BACKEND" default:"json" choice:"json" choice:"postgres" description:"Snapshot store backend"`
	ExportDir string `long:"export-dir" env:"EXPORT_DIR" default:"." description:"Directory for the per-search CSV export"`

	PostgresHost     string `long:"pg-host" env:"POSTGRES_HOST" default:"localhost" description:"PostgreSQL host"`
	PostgresPort     string `long:"pg-port" env:"POSTGRES_PORT" default:"5432" description:"PostgreSQL port"`
	PostgresUser     string `long:"pg-user" env:"POSTGRES_USER" default:"finder" description:"PostgreSQL user"`
	PostgresPassword string `long:"pg-password" env:"POSTGRES_PASSWORD" default:"finder" description:"PostgreSQL password"`
	PostgresDB       string `long:"pg-db" env:"POSTGRES_DB" default:"house_finder" description:"PostgreSQL database"`
	PostgresSSLMode  string `long:"pg-sslmode" env:"POSTGRES_SSLMODE" default:"disable" description:"PostgreSQL sslmode"`

	Fetcher        string `long:"fetcher" env:"FETCHER" default:"http" choice:"http" choice:"chrome" description:"How catalog pages are retrieved"`
	MaxConcurrency int    `long:"concurrency" env:"MAX_CONCURRENCY" default:"1" description:"Pages fetched in parallel after the first"`
	RateLimitMs    int    `long:"rate-limit-ms" env:"RATE_LIMIT_MS" default:"1000" description:"Minimum delay between page fetches"`
	MaxAttempts    int    `long:"max-attempts" env:"MAX_ATTEMPTS" default:"1" description:"Attempts per page fetch (1 disables retries)"`
	MaxPages       int    `long:"max-pages" env:"MAX_PAGES" default:"500" description:"Abort when a search reports more result pages than this"`
	RequestTimeout int    `long:"timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Page fetch timeout in seconds"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent for page requests"`
	ChromeBin      string `long:"chrome-bin" env:"CHROME_BIN" description:"Chrome binary for the chrome fetcher"`

	Browser bool `short:"w" long:"browser" description:"Open listings in a browser instead of printing links"`
	Debug   bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Search searchOptions `group:"Search filters"`

	List   listCommand   `command:"list" alias:"listar" description:"Search and list listings of a category"`
	Remove removeCommand `command:"remove" alias:"quitar" description:"Mark a listing as discarded"`
}

// Load reads the .env file (if any), then parses args and environment
// variables. It returns nil, nil when help was requested.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var raw rawConfig
	parser := flags.NewParser(&raw, flags.Default)
	parser.SubcommandsOptional = true

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parse arguments: %w", err)
	}

	cfg := &Config{
		StorePath: raw.StorePath,
		Backend:   raw.Backend,
		ExportDir: raw.ExportDir,

		PostgresHost:     raw.PostgresHost,
		PostgresPort:     raw.PostgresPort,
		PostgresUser:     raw.PostgresUser,
		PostgresPassword: raw.PostgresPassword,
		PostgresDB:       raw.PostgresDB,
		PostgresSSLMode:  raw.PostgresSSLMode,

		Fetcher:        raw.Fetcher,
		MaxConcurrency: raw.MaxConcurrency,
		RateLimitMs:    raw.RateLimitMs,
		MaxAttempts:    raw.MaxAttempts,
		MaxPages:       raw.MaxPages,
		RequestTimeout: time.Duration(raw.RequestTimeout) * time.Second,
		UserAgent:      raw.UserAgent,
		ChromeBin:      raw.ChromeBin,

		Browser: raw.Browser,
		Debug:   raw.Debug,

		Search: SearchParams{
			Province:         NormalizeName(raw.Search.Province),
			MinPrice:         raw.Search.MinPrice,
			MaxPrice:         raw.Search.MaxPrice,
			Currency:         raw.Search.Currency,
			Operation:        raw.Search.Operation,
			Bedrooms:         raw.Search.Bedrooms,
			City:             NormalizeName(raw.Search.City),
			NeighborhoodType: raw.Search.NeighborhoodType,
			Neighborhood:     NormalizeName(raw.Search.Neighborhood),
			UnitType:         raw.Search.UnitType,
		},

		Command:  CommandList,
		Category: DefaultCategory,
	}

	if parser.Active != nil && parser.Active.Name == CommandRemove {
		cfg.Command = CommandRemove
		cfg.RemoveID = strings.TrimSpace(raw.Remove.Args.ID)
		if cfg.RemoveID == "" {
			return nil, fmt.Errorf("config: remove needs a listing id")
		}
	} else if raw.List.Args.Category != "" {
		cfg.Category = raw.List.Args.Category
	}

	show, err := ParseCategory(cfg.Category)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Show = show

	return cfg, nil
}

// Discovers reports whether the configured command runs a catalog search.
// Searching only makes sense when newly found listings can be shown.
func (c *Config) Discovers() bool {
	return c.Command == CommandList && c.Show.Has(models.StatusNew)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}
