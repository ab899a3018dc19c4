package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type reportBody struct {
	RunID      string `json:"run_id"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	OK         bool   `json:"ok"`
	Record     *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"record"`
	Error string `json:"error"`
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) reportBody {
	t.Helper()

	var rep reportBody
	if err := json.NewDecoder(w.Result().Body).Decode(&rep); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return rep
}

func TestHandler_Probe_OK(t *testing.T) {
	handler := setupTestHandler()
	host, port := setupDevice(t, http.StatusOK, `{"id": "dev-1", "title": "Lamp"}`)

	req := httptest.NewRequest("GET", probeURL("/api/probe", host, port), nil)
	w := httptest.NewRecorder()
	handler.probe(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	rep := decodeReport(t, w)
	if !rep.OK || rep.StatusCode != http.StatusOK {
		t.Errorf("Expected ok report, got %+v", rep)
	}
	if rep.Record == nil || rep.Record.ID != "dev-1" || rep.Record.Title != "Lamp" {
		t.Errorf("Expected record {dev-1, Lamp}, got %+v", rep.Record)
	}
	if rep.URL != "http://"+host+":"+port+"/" {
		t.Errorf("Unexpected URL %q", rep.URL)
	}
	if rep.RunID == "" {
		t.Error("Expected run ID")
	}
}

func TestHandler_Probe_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"Device 404", http.StatusNotFound, `{}`, http.StatusNotFound},
		{"Missing id", http.StatusOK, `{"title": "Lamp"}`, http.StatusOK},
		{"Not JSON", http.StatusOK, `<html></html>`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupTestHandler()
			host, port := setupDevice(t, tt.status, tt.body)

			req := httptest.NewRequest("GET", probeURL("/api/probe", host, port), nil)
			w := httptest.NewRecorder()
			handler.probe(w, req)

			if w.Code != http.StatusBadGateway {
				t.Fatalf("Expected status 502, got %d", w.Code)
			}

			rep := decodeReport(t, w)
			if rep.OK || rep.Record != nil {
				t.Errorf("Expected failed report without record, got %+v", rep)
			}
			if rep.StatusCode != tt.wantStatus {
				t.Errorf("Expected device status %d, got %d", tt.wantStatus, rep.StatusCode)
			}
			if rep.Error == "" {
				t.Error("Expected error message")
			}
		})
	}
}

func TestHandler_Probe_MissingParams(t *testing.T) {
	handler := setupTestHandler()

	for _, path := range []string{"/api/probe", "/api/probe?host=127.0.0.1", "/api/probe?port=80"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		handler.probe(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
}

func TestHandler_Describe(t *testing.T) {
	handler := setupTestHandler()
	host, port := setupDevice(t, http.StatusOK, `{"id": "dev-1", "title": "Lamp", "@type": ["Light"], "count": 3}`)

	req := httptest.NewRequest("GET", probeURL("/api/describe", host, port), nil)
	w := httptest.NewRecorder()
	handler.describe(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var desc map[string]any
	if err := json.NewDecoder(w.Body).Decode(&desc); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if desc["id"] != "dev-1" || desc["count"] != float64(3) {
		t.Errorf("Unexpected description %v", desc)
	}
}

func TestHandler_Describe_NotFound(t *testing.T) {
	handler := setupTestHandler()
	host, port := setupDevice(t, http.StatusNotFound, ``)

	req := httptest.NewRequest("GET", probeURL("/api/describe", host, port), nil)
	w := httptest.NewRecorder()
	handler.describe(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", w.Code)
	}
}
