package gridiron

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nflsurvivor/survivor-pool/internal/platform/resilience"
	"github.com/nflsurvivor/survivor-pool/internal/usecase"
)

func TestClientFetchTeams_ParsesAndNormalizes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "secret-key" {
			t.Fatalf("unexpected api_key: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"t-kc","name":"Chiefs","city":"Kansas City","abbreviation":"kc","conference":"afc","division":"West"},
			{"id":"t-bad","name":"No Abbreviation"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret-key"})

	teams, err := client.FetchTeams(context.Background())
	if err != nil {
		t.Fatalf("FetchTeams: %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(teams))
	}
	if teams[0].Abbreviation != "KC" || teams[0].Conference != "AFC" {
		t.Fatalf("unexpected normalization: %+v", teams[0])
	}
}

func TestClientFetchSeasonGames_SkipsUnparsableKickoffs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2025/games" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"g-1","week":5,"home_team":"kc","away_team":"lv","kickoff_at":"2025-10-05T17:00:00Z","status":"scheduled"},
			{"id":"g-2","week":5,"home_team":"buf","away_team":"mia","kickoff_at":"not-a-timestamp","status":"scheduled"},
			{"id":"g-3","week":6,"home_team":"dal","away_team":"nyg","kickoff_at":"2025-10-12 20:25:00","status":"final","home_points":24,"away_points":17}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	games, err := client.FetchSeasonGames(context.Background(), 2025)
	if err != nil {
		t.Fatalf("FetchSeasonGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if games[0].HomeAbbr != "KC" || games[0].Week != 5 {
		t.Fatalf("unexpected first game: %+v", games[0])
	}
	if games[1].HomeScore == nil || *games[1].HomeScore != 24 {
		t.Fatalf("expected home_points 24, got %+v", games[1].HomeScore)
	}
	if games[1].KickoffAt.UTC().Hour() != 20 {
		t.Fatalf("space separated timestamp not parsed: %v", games[1].KickoffAt)
	}
}

func TestClientFetchSeasonGames_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 2})

	if _, err := client.FetchSeasonGames(context.Background(), 2025); err != nil {
		t.Fatalf("FetchSeasonGames: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestClientDoJSON_RedactsAPIKeyAndOpensCircuit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL: srv.URL,
		APIKey:  "super-secret",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	_, err := client.FetchTeams(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if strings.Contains(err.Error(), "super-secret") {
		t.Fatalf("api key leaked into error: %v", err)
	}

	if _, err := client.FetchTeams(context.Background()); !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected open circuit rejection, got %v", err)
	}
}
