package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/martinsuchenak/thingprobe/internal/api"
	"github.com/martinsuchenak/thingprobe/internal/config"
	"github.com/martinsuchenak/thingprobe/internal/mcp"
	"github.com/martinsuchenak/thingprobe/internal/model"
)

func newTestHandler(t *testing.T, apiToken string) http.Handler {
	t.Helper()

	cfg := &config.Config{Timeout: 2 * time.Second, ListenAddr: ":0", APIAuthToken: apiToken}
	newFetcher := FetcherFactory(cfg)
	return NewHandler(&ServerConfig{
		Config:     cfg,
		APIHandler: api.NewHandler(newFetcher),
		MCPServer:  mcp.NewServer(newFetcher, ""),
	})
}

func TestNewHandler_Probe(t *testing.T) {
	device := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "dev-1", "title": "Lamp"}`))
	}))
	defer device.Close()
	u, _ := url.Parse(device.URL)

	srv := httptest.NewServer(newTestHandler(t, "secret"))
	defer srv.Close()

	path := srv.URL + "/api/probe?host=" + u.Hostname() + "&port=" + u.Port()

	resp, err := http.Get(path)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest("GET", path, nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on API responses")
	}

	var rep struct {
		OK     bool `json:"ok"`
		Record struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !rep.OK || rep.Record.ID != "dev-1" || rep.Record.Title != "Lamp" {
		t.Errorf("Unexpected report %+v", rep)
	}
}

func TestFetcherFactory(t *testing.T) {
	cfg := &config.Config{Timeout: time.Second}
	f := FetcherFactory(cfg)(model.Target{Host: "127.0.0.1", Port: "8080"})

	if f.BaseURL() != "http://127.0.0.1:8080/" {
		t.Errorf("Unexpected base URL %q", f.BaseURL())
	}
}

func TestRunServer_RefusesUnprotectedListen(t *testing.T) {
	cfg := &config.Config{Timeout: time.Second, ListenAddr: "0.0.0.0:0", APIAuthToken: "secret"}
	newFetcher := FetcherFactory(cfg)

	err := RunServer(context.Background(), &ServerConfig{
		Config:     cfg,
		APIHandler: api.NewHandler(newFetcher),
		MCPServer:  mcp.NewServer(newFetcher, cfg.MCPAuthToken),
	})
	if !errors.Is(err, config.ErrUnprotectedListen) {
		t.Fatalf("Expected ErrUnprotectedListen, got %v", err)
	}
}

func TestRunServer_StopsOnContext(t *testing.T) {
	cfg := &config.Config{Timeout: time.Second, ListenAddr: "127.0.0.1:0"}
	newFetcher := FetcherFactory(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, &ServerConfig{
			Config:     cfg,
			APIHandler: api.NewHandler(newFetcher),
			MCPServer:  mcp.NewServer(newFetcher, ""),
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop after context cancellation")
	}
}
