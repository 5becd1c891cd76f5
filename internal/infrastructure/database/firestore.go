package database

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/befriend-app/befriend-backend/internal/config"
	"google.golang.org/api/option"
)

// NewFirestoreClient connects to Firestore, or to the emulator when an emulator host is configured.
// The client library reads FIRESTORE_EMULATOR_HOST from the process environment.
func NewFirestoreClient(ctx context.Context, cfg *config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			_ = os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost)
		}
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	return client, nil
}
