package main

import (
	"errors"
	"fmt"

	"github.com/amonks/pv/account"
	"github.com/amonks/pv/board"
	"github.com/amonks/pv/feed"
	"github.com/amonks/pv/internal/config"
	"github.com/amonks/pv/internal/kv"
	"github.com/amonks/pv/task"
)

// exitError carries a process exit status.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

const exitNoSession = 2

// app holds the storage handles one command works with.
type app struct {
	cfg      *config.Config
	store    kv.Store
	users    *account.Users
	sessions *account.Sessions
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := kv.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}
	users := account.NewUsers(store)
	return &app{
		cfg:      cfg,
		store:    store,
		users:    users,
		sessions: account.NewSessions(store, users),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// requireSession returns the current session, or an error telling the user
// to log in.
func (a *app) requireSession() (account.Session, error) {
	session, err := a.sessions.Require()
	if errors.Is(err, account.ErrNoSession) {
		return account.Session{}, &exitError{
			code: exitNoSession,
			err:  fmt.Errorf("%w; run `pv login`", err),
		}
	}
	return session, err
}

// fetcher returns the configured feed client, or nil when the feed is disabled.
func (a *app) fetcher() (feed.Fetcher, error) {
	if a.cfg.Feed.URL == "" {
		return nil, nil
	}
	timeout, err := a.cfg.Feed.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return feed.NewClient(feed.Options{URL: a.cfg.Feed.URL, Timeout: timeout}), nil
}

// openBoard checks the session and loads the user's board.
func (a *app) openBoard(prompter board.Prompter) (*board.Board, error) {
	session, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	f, err := a.fetcher()
	if err != nil {
		return nil, err
	}
	return board.Open(board.Options{
		Tasks:    task.NewStore(a.store, session.Username),
		Cache:    feed.NewCache(a.store),
		Fetcher:  f,
		Prompter: prompter,
	})
}
