// Package bootstrap builds the shared dependencies of the server and cronjob
// binaries from configuration.
package bootstrap

import (
	"context"
	"fmt"

	firebasesdk "firebase.google.com/go/v4"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/firebase"
	"clubhub-backend/internal/github"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/repository/firestore"
	"clubhub-backend/internal/repository/postgres"
	"clubhub-backend/internal/security"
)

// Deps holds the process-wide clients. Close releases them.
type Deps struct {
	Requests repository.MembershipRequestRepository
	GitHub   *github.Client

	firebase *firebasesdk.App
	closers  []func() error
}

// Open connects the configured store and creates the GitHub client.
func Open(ctx context.Context, cfg *config.Config) (*Deps, error) {
	d := &Deps{
		GitHub: github.NewClient(github.Config{
			BaseURL:           cfg.GitHub.BaseURL,
			Org:               cfg.GitHub.Org,
			Token:             cfg.GitHub.Token,
			RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
			Timeout:           cfg.GitHubTimeout(),
		}),
	}

	if cfg.Store.Type == "firestore" || cfg.Auth.Provider == "firebase" {
		app, err := firebase.NewApp(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		d.firebase = app
	}

	switch cfg.Store.Type {
	case "firestore":
		client, err := d.firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firestore client: %w", err)
		}
		d.closers = append(d.closers, client.Close)
		d.Requests = firestore.NewMembershipRequestRepository(client, cfg.Store.Collection)
		logger.Info("Using Firestore store", "project_id", cfg.Firebase.ProjectID, "collection", cfg.Store.Collection)
	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		store, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, store.Close)
		d.Requests = store
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Store.Type)
	}

	return d, nil
}

// Authenticator returns the bearer token verifier for auth.provider.
func (d *Deps) Authenticator(ctx context.Context, cfg *config.Config) (security.Authenticator, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		client, err := d.firebase.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
		}
		return security.NewFirebaseAuthenticator(client, cfg.Auth.AdminEmails), nil
	default:
		return security.NewTokenManager(cfg.Auth.JWTSecret), nil
	}
}

func (d *Deps) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			logger.Warn("Failed to close client", "error", err)
		}
	}
}
