// Package app wires configuration, logging, cache, storage and the API
// client together for each CLI command.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pryvon/tempmail-cli/internal/cache"
	"github.com/pryvon/tempmail-cli/internal/config"
	"github.com/pryvon/tempmail-cli/internal/logging"
	"github.com/pryvon/tempmail-cli/internal/mailtm"
	"github.com/pryvon/tempmail-cli/internal/storage"
)

// App holds the constructed dependencies for one command invocation.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Cache   *cache.Store
	Client  *mailtm.Client
	Storage *storage.Storage
}

// Options control bootstrapping.
type Options struct {
	// ConfigFile overrides the config search path.
	ConfigFile string

	// Debug forces debug-level logging.
	Debug bool
}

// Bootstrap loads configuration and builds the dependency graph, restoring
// any persisted session into the client.
func Bootstrap(opts Options) (*App, error) {
	loader := config.NewLoader()
	if opts.ConfigFile != "" {
		loader.SetConfigFile(opts.ConfigFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mailtm.ErrConfiguration, err)
	}

	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	logOutput := os.Stderr
	if cfg.LogFile != "" {
		if f, ferr := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); ferr == nil {
			logOutput = f
		}
	}

	log := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logOutput,
	})

	store := cache.Open(cfg.CacheFile,
		cache.WithEnabled(cfg.CacheEnabled),
		cache.WithDefaultTTL(cfg.CacheTTLDuration()),
		cache.WithLogger(logging.Component(log, "cache")),
	)

	client := mailtm.New(cfg, store,
		mailtm.WithLogger(logging.Component(log, "client")),
	)

	st, err := storage.New(cfg.BaseDir(), cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	if sess, err := st.LoadSession(); err != nil {
		log.Warn().Err(err).Msg("could not restore session")
	} else if sess != nil {
		if err := client.RestoreSession(sess.Token, sess.Account); err != nil {
			log.Warn().Err(err).Msg("stored session is incomplete, ignoring")
		}
	}

	return &App{
		Config:  cfg,
		Log:     log,
		Cache:   store,
		Client:  client,
		Storage: st,
	}, nil
}

// SaveSession snapshots the client's current session to disk.
func (a *App) SaveSession() error {
	return a.Storage.SaveSession(a.Client.Token(), a.Client.CurrentAccount())
}
