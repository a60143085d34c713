package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/UgochukwuChidera/studio-sub001/internal/ai"
	"github.com/UgochukwuChidera/studio-sub001/internal/consent"
	"github.com/UgochukwuChidera/studio-sub001/internal/credential"
	"github.com/UgochukwuChidera/studio-sub001/internal/flow"
	"github.com/UgochukwuChidera/studio-sub001/internal/kv"
	"github.com/UgochukwuChidera/studio-sub001/internal/model"
	"github.com/UgochukwuChidera/studio-sub001/internal/notify"
	"github.com/UgochukwuChidera/studio-sub001/internal/session"
	"github.com/UgochukwuChidera/studio-sub001/internal/store"
	"github.com/UgochukwuChidera/studio-sub001/internal/study"
)

const defaultKeyringPassword = "noteflow-file-key"

// env is the set of opened collaborators a command works with.
type env struct {
	cfg      *model.AppConfig
	logger   *zap.Logger
	store    *store.SQLiteStore
	secrets  kv.Store
	sessions *session.Manager
	consent  *consent.Manager
	center   *notify.Center
}

// open opens the database and secret store described by the config.
func (c *cli) open() (*env, error) {
	dbPath := c.cfg.Storage.DBPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}

	var secrets kv.Store
	ring, err := openSecrets(c.cfg.Secrets)
	if err != nil {
		// Headless machines often have no keyring; keep working with the
		// local database and say so.
		c.logger.Warn("keyring unavailable, storing session in the local database", zap.Error(err))
		secrets = s.KeyValues()
	} else {
		secrets = ring
	}

	return &env{
		cfg:      c.cfg,
		logger:   c.logger,
		store:    s,
		secrets:  secrets,
		sessions: session.NewManager(secrets, c.logger),
		consent:  consent.NewManager(s.KeyValues(), c.cfg.Consent.Version, c.logger),
		center: notify.NewCenter(s,
			notify.WithLogger(c.logger),
			notify.WithRetention(notify.PolicyFromConfig(c.cfg.Notifications)),
		),
	}, nil
}

func openSecrets(cfg model.SecretsConfig) (*credential.Keyring, error) {
	if cfg.FileDir == "" {
		return credential.Open()
	}
	password := os.Getenv("NOTEFLOW_KEYRING_PASSWORD")
	if password == "" {
		password = defaultKeyringPassword
	}
	return credential.OpenFile(cfg.FileDir, password)
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing store", zap.Error(err))
	}
}

// current returns the signed-in session.
func (e *env) current(ctx context.Context) (session.Session, error) {
	sess, err := e.sessions.Current(ctx)
	if errors.Is(err, session.ErrSignedOut) {
		return session.Session{}, fmt.Errorf("%w; run 'noteflow login' first", err)
	}
	return sess, err
}

// inbox returns the signed-in user's notifications.
func (e *env) inbox(ctx context.Context) (*notify.Inbox, error) {
	sess, err := e.current(ctx)
	if err != nil {
		return nil, err
	}
	return e.center.Inbox(sess.UserID), nil
}

// apiKey resolves the Gemini API key from the environment, then the
// secret store.
func (e *env) apiKey(ctx context.Context) string {
	if key := model.APIKeyFromEnv(); key != "" {
		return key
	}
	key, _, err := e.secrets.Get(ctx, credential.APIKeyName)
	if err != nil {
		e.logger.Warn("reading stored API key", zap.Error(err))
	}
	return key
}

// runner initializes the generator and returns a flow runner over it.
func (e *env) runner(ctx context.Context) (*flow.Runner, error) {
	gen, readiness := ai.Init(ctx, e.apiKey(ctx), e.cfg.AI.Model, e.logger)

	prompts, err := flow.LoadPrompts(e.cfg.AI.PromptDir)
	if err != nil {
		return nil, err
	}

	return flow.NewRunner(gen, readiness, prompts,
		flow.WithTimeout(time.Duration(e.cfg.AI.TimeoutSec)*time.Second),
		flow.WithLogger(e.logger),
	), nil
}

// workspace returns the signed-in user's study service.
func (e *env) workspace(ctx context.Context) (*study.Service, error) {
	inbox, err := e.inbox(ctx)
	if err != nil {
		return nil, err
	}
	runner, err := e.runner(ctx)
	if err != nil {
		return nil, err
	}
	return study.New(e.store, runner, inbox, e.logger), nil
}

// withEnv opens the environment for the duration of fn.
func (c *cli) withEnv(fn func(e *env) error) error {
	e, err := c.open()
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}
