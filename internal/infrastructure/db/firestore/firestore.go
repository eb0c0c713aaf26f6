// Package firestore backs the DocumentStore with Cloud Firestore through the
// Firebase Admin SDK.
package firestore

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

type Config struct {
	ProjectID       string
	CredentialsPath string
}

// Connect initialises a Firebase app and opens its Firestore client. An empty
// CredentialsPath falls back to Application Default Credentials.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	return NewStore(client), nil
}
