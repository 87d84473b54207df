package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"ingredient-scanner/internal/config"
	"ingredient-scanner/internal/ocr"
	"ingredient-scanner/internal/wordlist"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenStore opens the word list store selected by cfg. The returned closer
// releases any connection the store holds.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (wordlist.Store, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return wordlist.NewMemoryStore(), nopCloser{}, nil
	case config.DriverFile, "":
		return wordlist.NewFileStore(cfg.Path), nopCloser{}, nil
	case config.DriverRedis:
		s, err := wordlist.NewRedisStore(ctx, wordlist.RedisConfig{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.DriverPostgres:
		s, err := wordlist.NewSQLStore(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Runtime bundles what every front end needs: the loaded word lists, the
// recognizer factory and the store to close on shutdown.
type Runtime struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   wordlist.Store
	Lists   *wordlist.Lists
	Engines ocr.Factory

	closer io.Closer
}

// NewRuntime opens the store, loads the lists and prepares a Tesseract
// factory. A list load failure is logged and the defaults are used.
func NewRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Runtime, error) {
	store, closer, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open word list store: %w", err)
	}

	lists := wordlist.NewLists(store, logger)
	if err := lists.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("word lists could not be fully loaded")
	}

	opts := ocr.DefaultOptions()
	opts.Language = cfg.OCR.Language

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Lists:   lists,
		Engines: ocr.NewTesseractFactory(opts),
		closer:  closer,
	}, nil
}

// NewSession creates a session wired to the runtime.
func (r *Runtime) NewSession() *Session {
	return NewSession(Options{
		Lists:      r.Lists,
		Engines:    r.Engines,
		Logger:     r.Logger,
		OCRTimeout: r.Config.OCR.Timeout,
	})
}

// WatchLists reloads the lists when the file store changes on disk. It is a
// no-op for other stores and blocks until ctx is cancelled.
func (r *Runtime) WatchLists(ctx context.Context) error {
	fs, ok := r.Store.(*wordlist.FileStore)
	if !ok {
		return nil
	}
	return fs.Watch(ctx, r.Logger, func() {
		if err := r.Lists.Reload(ctx); err != nil {
			r.Logger.Warn().Err(err).Msg("reload word lists")
			return
		}
		r.Logger.Info().Msg("word lists reloaded from disk")
	})
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
