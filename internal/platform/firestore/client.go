package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"github.com/weiwei-tsao/covid-state-compare/internal/platform/config"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Connect opens and pings a Firestore client for refresh run history.
// It returns (nil, nil) when no project is configured; run history is then disabled.
func Connect(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	if !cfg.FirestoreEnabled() {
		log.Info().Msg("FIREBASE_PROJECT_ID not set; refresh run history disabled")
		return nil, nil
	}

	creds, source, err := cfg.FirebaseCredentialsJSON()
	if err != nil {
		return nil, err
	}
	client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	if err := ping(ctx, client); err != nil {
		client.Close()
		return nil, fmt.Errorf("firestore ping: %w", err)
	}

	log.Info().
		Str("project", cfg.FirebaseProjectID).
		Str("credentials", source).
		Msg("connected to Firestore")
	return client, nil
}

// ping attempts to iterate collections, which fails fast on bad credentials.
func ping(ctx context.Context, client *firestore.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	iter := client.Collections(ctx)
	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil
	}
	return err
}
