package firestore

import (
	"context"
	"testing"

	"github.com/weiwei-tsao/covid-state-compare/internal/platform/config"
)

func TestConnectDisabledWithoutProject(t *testing.T) {
	client, err := Connect(context.Background(), config.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatalf("expected no client when FIREBASE_PROJECT_ID is empty")
	}
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	cfg := config.Defaults()
	cfg.FirebaseProjectID = "covid-state-compare"
	cfg.FirebaseCredsBase64 = "not base64!"

	if _, err := Connect(context.Background(), cfg); err == nil {
		t.Fatalf("expected credential decode error")
	}
}
