package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/pricewatch/internal/config"
	"github.com/five82/pricewatch/internal/prefs"
	"github.com/five82/pricewatch/internal/pricewatch"
	"github.com/five82/pricewatch/internal/search"
	"github.com/five82/pricewatch/internal/session"
	"github.com/five82/pricewatch/internal/ui"
)

// Options configure the pricewatch application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/pricewatch/prefs.toml
	EnvFile      string // empty uses ./.env
	Query        string // dispatched once the UI starts
	RefreshEvery int    // seconds; overrides refresh_seconds when positive
}

// LoginOptions configure a one-shot credential exchange.
type LoginOptions struct {
	ConfigPath string
	EnvFile    string
	Email      string
	Password   string
}

type runtime struct {
	cfg     config.Config
	log     zerolog.Logger
	session *session.Session
	client  *pricewatch.Client
	close   func()
}

// Run boots the pricewatch TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := bootstrap(opts.EnvFile, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer rt.close()

	if opts.RefreshEvery > 0 {
		rt.cfg.RefreshInterval = time.Duration(opts.RefreshEvery) * time.Second
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		rt.log.Warn().Err(err).Msg("prefs unreadable; using defaults")
	}

	container := search.New(rt.client,
		search.WithLogger(rt.log.With().Str("component", "search").Logger()))

	if rt.cfg.RefreshInterval > 0 {
		StartRefresher(ctx, container, rt.cfg.RefreshInterval,
			rt.log.With().Str("component", "refresher").Logger())
	}

	rt.log.Info().
		Str("api_url", rt.client.BaseURL()).
		Int("pages", rt.cfg.Pages).
		Bool("auto_fetch", rt.cfg.AutoFetch).
		Dur("refresh", rt.cfg.RefreshInterval).
		Bool("signed_in", rt.session.Token() != "").
		Msg("pricewatch starting")

	uiOpts := ui.Options{
		Context:      ctx,
		Search:       container,
		Session:      rt.session,
		Config:       rt.cfg,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		InitialQuery: opts.Query,
		Logger:       rt.log.With().Str("component", "ui").Logger(),
	}
	err = ui.Run(uiOpts)
	rt.log.Info().Err(err).Msg("pricewatch stopped")
	return err
}

// Login exchanges credentials for an access token and stores it in the
// configured token file.
func Login(ctx context.Context, opts LoginOptions) error {
	rt, err := bootstrap(opts.EnvFile, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer rt.close()

	token, err := rt.client.Login(ctx, opts.Email, opts.Password)
	if err != nil {
		rt.log.Warn().Err(err).Msg("login failed")
		return err
	}
	if err := rt.session.Set(token.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	rt.log.Info().Str("token_file", rt.cfg.TokenFile).Msg("login succeeded")
	return nil
}

func bootstrap(envFile, configPath string) (*runtime, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	sess, err := session.Open(cfg.TokenFile, cfg.Token)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	client, err := pricewatch.NewClient(pricewatch.Options{
		BaseURL: cfg.APIURL,
		Pages:   cfg.Pages,
		Timeout: cfg.RequestTimeout,
		Tokens:  sess,
		Logger:  logger.With().Str("component", "api").Logger(),
	})
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		log:     logger,
		session: sess,
		client:  client,
		close:   func() { _ = closer.Close() },
	}, nil
}
