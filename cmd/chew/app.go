package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baiirun/chew/internal/collection"
	"github.com/baiirun/chew/internal/config"
	"github.com/baiirun/chew/internal/db"
	"github.com/baiirun/chew/internal/logging"
	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/render"
	"github.com/baiirun/chew/internal/store/jsonstore"
)

// options holds the persistent flags.
type options struct {
	configPath string
	backend    string
	path       string
	collection string
	logLevel   string
	json       bool
	plain      bool
}

// app is everything a command needs once config is resolved.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	col     *collection.Collection
	out     io.Writer
	printer *render.Printer
	json    bool

	// stats seen by the last change notification
	stats collection.Stats

	closers []func() error
}

// loadConfig reads the config file and environment, then applies any
// explicitly set flags on top.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Backend = o.backend
		if !flags.Changed("path") {
			// default path depends on the backend
			cfg.Store.Path = ""
		}
	}
	if flags.Changed("path") {
		cfg.Store.Path = o.path
	}
	if flags.Changed("collection") {
		cfg.Store.Collection = o.collection
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// open resolves config, builds the logger, opens the configured store and
// fetches the collection.
func (o *options) open(cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		out:     cmd.OutOrStdout(),
		printer: render.New(cmd.OutOrStdout(), o.plain),
		json:    o.json,
	}

	store, err := a.openStore()
	if err != nil {
		_ = a.close()
		return nil, err
	}

	a.col = collection.New(store,
		collection.WithLogger(log.With(zap.String("collection", cfg.Store.Collection))),
		collection.WithOnChange(a.changed),
	)
	if err := a.col.Fetch(); err != nil {
		_ = a.close()
		return nil, err
	}
	a.stats = a.col.Stats()
	return a, nil
}

func (a *app) openStore() (collection.Store, error) {
	switch a.cfg.Store.Backend {
	case config.BackendJSON:
		a.log.Debug("opening json store", zap.String("dir", a.cfg.Store.Path))
		return jsonstore.New(a.cfg.Store.Path, a.cfg.Store.Collection)
	default:
		database, err := a.openDB()
		if err != nil {
			return nil, err
		}
		return database.Namespace(a.cfg.Store.Collection)
	}
}

func (a *app) openDB() (*db.DB, error) {
	a.log.Debug("opening database", zap.String("path", a.cfg.Store.Path))
	database, err := db.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	if err := database.Init(); err != nil {
		return nil, err
	}
	return database, nil
}

func (a *app) changed(_ []model.Item, s collection.Stats) {
	a.stats = s
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	// Syncing stderr fails on some terminals; nothing is buffered anyway.
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// lookup resolves an id or order number.
func (a *app) lookup(ref string) (model.Item, error) {
	item, ok := a.col.Lookup(ref)
	if !ok {
		return model.Item{}, collection.NotFound(ref)
	}
	return item, nil
}

// result is the JSON shape of every mutating command.
type result struct {
	Item    *model.Item      `json:"item,omitempty"`
	Cleared *int             `json:"cleared,omitempty"`
	Stats   collection.Stats `json:"stats"`
}

// listing is the JSON shape of list.
type listing struct {
	Collection string           `json:"collection"`
	Items      []model.Item     `json:"items"`
	Stats      collection.Stats `json:"stats"`
}

func (a *app) writeJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// report prints the outcome of a mutation: a message and the fresh stats,
// or the JSON result.
func (a *app) report(msg string, res result) error {
	res.Stats = a.stats
	if a.json {
		return a.writeJSON(res)
	}
	a.printer.OK(msg)
	_, err := fmt.Fprintln(a.out, a.printer.StatsLine(a.stats))
	return err
}
