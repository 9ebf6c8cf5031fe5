package main

import (
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"reviewdeck-backend/internal/config"
	"reviewdeck-backend/internal/db"
	"reviewdeck-backend/internal/gitlab"
	"reviewdeck-backend/internal/logging"
	"reviewdeck-backend/internal/notify"
	"reviewdeck-backend/internal/server"
	"reviewdeck-backend/internal/store"
)

// defaultAccountID names the single account a standalone server manages.
const defaultAccountID = "default"

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	queries, err := config.LoadQueries(cfg.QueriesFile)
	if err != nil {
		logger.Error("failed to load saved queries", "file", cfg.QueriesFile, "err", err)
		os.Exit(1)
	}

	token, err := resolveToken(cfg, logger)
	if err != nil {
		logger.Error("failed to resolve access token", "err", err)
		os.Exit(1)
	}
	if token == "" {
		logger.Error("no access token available; set GITLAB_TOKEN or store a credential")
		os.Exit(1)
	}

	conn := store.NewConnectionStore()
	conn.SetBaseURL(defaultAccountID, cfg.GitLabBaseURL)

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	transport := gitlab.NewTransport(cfg.GitLabBaseURL, tokens, nil, logger)

	notifier := notify.NewNotifier()
	adapter := gitlab.NewAdapter(defaultAccountID, transport, conn, notifier, cfg.CommentCacheTTL, logger)

	srv := server.New(cfg, adapter, notifier, queries, logger)
	if err := srv.Start(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// resolveToken picks the access token: the environment wins, then the
// database store when configured, then the token file. An environment token
// is written through to the active store so it survives restarts.
func resolveToken(cfg config.Config, logger *slog.Logger) (string, error) {
	if cfg.DatabaseURL != "" {
		database, err := db.New(cfg.DatabaseURL)
		if err != nil {
			return "", err
		}
		if err := database.EnsureSchema(); err != nil {
			return "", err
		}
		creds := store.NewDatabaseCredentialStore(database)

		if cfg.GitLabToken != "" {
			if err := creds.SaveAccount(defaultAccountID, cfg.GitLabBaseURL, cfg.GitLabToken); err != nil {
				logger.Warn("failed to persist token to database", "err", err)
			}
			return cfg.GitLabToken, nil
		}
		acc, err := creds.GetAccount(defaultAccountID)
		if err != nil {
			return "", err
		}
		if acc != nil {
			logger.Info("using stored credential", "source", "database")
			return acc.AccessToken, nil
		}
		return "", nil
	}

	files := store.NewFileCredentialStore(cfg.GitLabTokenFile)
	if cfg.GitLabToken != "" {
		if err := files.Write(&oauth2.Token{AccessToken: cfg.GitLabToken}); err != nil {
			logger.Warn("failed to persist token to file", "path", cfg.GitLabTokenFile, "err", err)
		}
		return cfg.GitLabToken, nil
	}
	tok, err := files.Read()
	if err != nil {
		return "", err
	}
	if tok != nil {
		logger.Info("using stored credential", "source", "file")
		return tok.AccessToken, nil
	}
	return "", nil
}
