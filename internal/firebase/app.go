// Package firebase bootstraps the Firebase app shared by the Firestore store
// and ID token verification.
package firebase

import (
	"context"
	"fmt"

	firebasesdk "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
)

// NewApp creates a Firebase app for the configured project. Without a
// credentials file the SDK falls back to application default credentials
// (or the emulator when FIRESTORE_EMULATOR_HOST is set).
func NewApp(ctx context.Context, cfg config.FirebaseConfig) (*firebasesdk.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	logger.ExternalServiceCall("firebase", "NewApp", "project_id", cfg.ProjectID)
	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: cfg.ProjectID}, opts...)
	logger.ExternalServiceResult("firebase", "NewApp", err, "project_id", cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}
