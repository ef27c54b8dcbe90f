package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ttani03/inetnums/internal/models"
	"github.com/ttani03/inetnums/internal/ripe"
)

// ErrUsage wraps every command line validation failure.
var ErrUsage = errors.New("usage error")

const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Env holds settings read from the environment.
type Env struct {
	SearchURL   string
	Source      string
	Timeout     time.Duration
	SOCKS5Proxy string
	DatabaseURL string
	LogLevel    string
	LogFile     string
}

// Load reads a .env file if one exists, then the process environment.
func Load() (*Env, error) {
	_ = godotenv.Load()

	env := &Env{
		SearchURL:   getenv("RIPE_SEARCH_URL", ripe.DefaultSearchURL),
		Source:      getenv("RIPE_SOURCE", "ripe"),
		SOCKS5Proxy: os.Getenv("RIPE_SOCKS5_PROXY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "warn"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	if v := os.Getenv("RIPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid RIPE_TIMEOUT %q: %w", v, err)
		}
		env.Timeout = d
	}
	return env, nil
}

func (e *Env) ClientOptions() ripe.Options {
	return ripe.Options{
		SearchURL:   e.SearchURL,
		Source:      e.Source,
		Timeout:     e.Timeout,
		SOCKS5Proxy: e.SOCKS5Proxy,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Args is the parsed command line.
type Args struct {
	Orgs      []string
	CIDR      bool
	Families  []models.Family
	Selection models.Selection
	Format    string
	Store     bool
}

// ParseArgs parses the command line. Organisation IDs may appear before,
// between or after flags. databaseURL is only checked when -store is given.
// Every failure has already been reported on stderr, together with the
// usage text, when ErrUsage is returned.
func ParseArgs(args []string, databaseURL string, stderr io.Writer) (*Args, error) {
	fs := flag.NewFlagSet("inetnums", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: inetnums [flags] <orgID> [<orgID>...]")
		fmt.Fprintln(stderr, "Query the RIPE Database for inet[6]num objects.")
		fs.PrintDefaults()
	}

	var a Args
	var v4, v6 bool
	fs.BoolVar(&a.CIDR, "c", false, "Output IPv4 CIDR notation")
	fs.BoolVar(&v4, "4", false, "IPv4 inetnum objects (-4 and/or -6 is mandatory)")
	fs.BoolVar(&v6, "6", false, "IPv6 inet6num objects")
	fs.BoolVar(&a.Selection.Assigned, "A", false, "Assigned inet[6]num objects (one or more of -A -a -s -l is mandatory)")
	fs.BoolVar(&a.Selection.Allocated, "a", false, "Allocated inet[6]num objects")
	fs.BoolVar(&a.Selection.SubAllocated, "s", false, "Sub-Allocated inet[6]num objects")
	fs.BoolVar(&a.Selection.Legacy, "l", false, "Legacy inet[6]num objects")
	fs.StringVar(&a.Format, "o", FormatCSV, "Output format: csv or html")
	fs.BoolVar(&a.Store, "store", false, "Save matching rows to the database at DATABASE_URL")

	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		a.Orgs = append(a.Orgs, args[0])
		args = args[1:]
	}

	if v4 {
		a.Families = append(a.Families, models.IPv4)
	}
	if v6 {
		a.Families = append(a.Families, models.IPv6)
	}

	var problem string
	switch {
	case len(a.Orgs) == 0:
		problem = "at least one <orgID> required"
	case len(a.Families) == 0:
		problem = "at least one of -4 -6 required"
	case !a.Selection.Any():
		problem = "at least one of -A -a -s -l required"
	case a.Format != FormatCSV && a.Format != FormatHTML:
		problem = fmt.Sprintf("unknown output format %q", a.Format)
	case a.Store && databaseURL == "":
		problem = "-store requires DATABASE_URL"
	}
	if problem != "" {
		fs.Usage()
		fmt.Fprintf(stderr, "inetnums: error: %s\n", problem)
		return nil, fmt.Errorf("%w: %s", ErrUsage, problem)
	}
	return &a, nil
}
