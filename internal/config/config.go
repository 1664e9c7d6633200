// Runtime configuration for the cart service.
//
// Values come from an optional .env override file and from process
// environment variables, with the environment taking precedence. The live
// configuration is a single immutable snapshot swapped atomically by a
// periodic reloader; request handlers only ever read it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Version is reported in every request log line.
const Version = "v1"

// DefaultReloadInterval is how often the reloader re-derives the config.
const DefaultReloadInterval = 5 * time.Second

var (
	ErrNoDBURL   = errors.New("no DB_URL specified in env or .env")
	ErrNoAppName = errors.New("no APP_NAME specified in env or .env")
)

// Config is one immutable configuration snapshot.
type Config struct {
	DBURL       string
	AppName     string
	CatalogHost string
	CatalogPort string
}

// CatalogURL is the base URL of the upstream catalog service.
func (c Config) CatalogURL() string {
	return fmt.Sprintf("http://%s:%s", c.CatalogHost, c.CatalogPort)
}

// Provider hands out the current snapshot to any number of readers.
// Only the reloader replaces it, so readers may see a snapshot that is at
// most one refresh interval stale, never a partially updated one.
type Provider struct {
	cur atomic.Pointer[Config]
}

func NewProvider(cfg Config) *Provider {
	p := &Provider{}
	p.cur.Store(&cfg)
	return p
}

func (p *Provider) Current() Config { return *p.cur.Load() }

func (p *Provider) swap(cfg Config) { p.cur.Store(&cfg) }

// Load resolves the initial configuration. The process must not start
// without a data store URL and a service name.
func Load(envFile string) (Config, error) {
	return resolve(envFile, Config{
		CatalogHost: "localhost",
		CatalogPort: "8000",
	})
}

// resolve derives the next snapshot from envFile and the environment,
// starting from prev. Required fields must resolve; the catalog address
// updates only when both host and port resolve, otherwise the previous
// values are kept.
func resolve(envFile string, prev Config) (Config, error) {
	overrides, err := godotenv.Read(envFile)
	if err != nil {
		// The override file is optional.
		overrides = nil
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return overrides[key]
	}

	next := prev

	if next.DBURL = lookup("DB_URL"); next.DBURL == "" {
		return prev, ErrNoDBURL
	}
	if next.AppName = lookup("APP_NAME"); next.AppName == "" {
		return prev, ErrNoAppName
	}

	host := lookup("BOOKSTORE_CATALOG_SERVICE_HOST")
	port := lookup("BOOKSTORE_CATALOG_SERVICE_PORT")
	if host != "" && port != "" {
		next.CatalogHost = host
		next.CatalogPort = port
	}

	return next, nil
}

// Reloader refreshes a Provider on a fixed interval. It has its own
// lifecycle, independent of the HTTP server.
type Reloader struct {
	provider *Provider
	envFile  string
	interval time.Duration
	onError  func(error)
	stop     chan struct{}
	done     chan struct{}
}

// NewReloader builds a reloader. onError is invoked when a periodic reload
// cannot produce the required fields; running on stale or absent config is
// not an option, so callers are expected to treat this as fatal.
func NewReloader(p *Provider, envFile string, interval time.Duration, onError func(error)) *Reloader {
	return &Reloader{
		provider: p,
		envFile:  envFile,
		interval: interval,
		onError:  onError,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Reloader) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.Reload(); err != nil {
					r.onError(err)
					return
				}
			case <-r.stop:
				return
			}
		}
	}()
}

func (r *Reloader) Stop() {
	select {
	case <-r.stop:
	default:
		close(r.stop)
	}
	<-r.done
}

// Reload runs one refresh cycle against the current snapshot.
func (r *Reloader) Reload() error {
	cur := r.provider.Current()
	log.Info().Str("app", cur.AppName).Str("version", Version).Msg("reloading config")

	next, err := resolve(r.envFile, cur)
	if err != nil {
		return fmt.Errorf("config reload: %w", err)
	}
	r.provider.swap(next)
	return nil
}
