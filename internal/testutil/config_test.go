package testutil

import (
	"testing"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}
		cfg := DefaultTestDBConfig()
		if cfg.Port != "55432" || cfg.Host != "localhost" || cfg.User != "equihire" || cfg.DBName != "equihire" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_PORT", "5432")
		if got := DefaultTestDBConfig().Port; got != "5432" {
			t.Fatalf("expected port 5432, got %s", got)
		}
	})
}

func TestBuildBaseDSN_EscapesCredentials(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	dsn := buildBaseDSN(TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p@ss/word", DBName: "equihire"})
	want := "postgres://u:p%40ss%2Fword@db:5432/equihire?sslmode=disable"
	if dsn != want {
		t.Fatalf("got %s want %s", dsn, want)
	}
}

func TestOrganizationRequestBuilder(t *testing.T) {
	a := NewOrganizationRequest().Build()
	b := NewOrganizationRequest().WithName("Acme").WithIdPOrgID("idp-1").Build()
	if a.OwnerID == b.OwnerID {
		t.Fatal("expected unique owners")
	}
	if b.Name != "Acme" || b.IdPOrgID == nil || *b.IdPOrgID != "idp-1" {
		t.Fatalf("unexpected request: %+v", b)
	}
}
