package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atomicdeploy/arshape/pkg/datasource"
	"github.com/atomicdeploy/arshape/pkg/exporter"
)

func writeSource(t *testing.T, path string, data map[string]string) {
	t.Helper()
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal JSON: %v", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		t.Fatalf("Failed to write JSON file: %v", err)
	}
}

// TestServerAPI tests the HTTP endpoints
func TestServerAPI(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "source.json")
	writeSource(t, jsonFile, map[string]string{
		"greeting": "مرحبا",
		"title":    "العربية",
	})

	srv, err := NewServer(Options{SourcePath: jsonFile})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	t.Run("GET /", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Expected HTML content type, got %q", ct)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("/ws")) {
			t.Error("Expected welcome page to connect to /ws")
		}
	})

	t.Run("POST /api/shape", func(t *testing.T) {
		body := strings.NewReader(`{"text": "لا"}`)
		req := httptest.NewRequest("POST", "/api/shape", body)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var response ShapeResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !response.Success {
			t.Error("Expected success=true")
		}
		if response.Shaped != "ﻻ" {
			t.Errorf("Expected shaped=ﻻ, got %q", response.Shaped)
		}
		if response.Codepoints != "U+FEFB" {
			t.Errorf("Expected codepoints=U+FEFB, got %q", response.Codepoints)
		}
		if len(response.Stages) != 5 {
			t.Errorf("Expected 5 stages, got %v", response.Stages)
		}
	})

	t.Run("POST /api/shape logical", func(t *testing.T) {
		body := strings.NewReader(`{"text": "لا أعلم", "logical": true}`)
		req := httptest.NewRequest("POST", "/api/shape", body)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		var response ShapeResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Shaped != "ﻻ ﺃﻋﻠﻢ" {
			t.Errorf("Expected logical order, got %q", response.Shaped)
		}
	})

	t.Run("POST /api/shape invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/shape", strings.NewReader("not json"))
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("GET /api/shape not allowed", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/shape", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", w.Code)
		}
	})

	t.Run("GET /api/inspect", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/inspect?text="+url.QueryEscape("لا"), nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var response struct {
			Success bool
			Source  []map[string]any
			Shaped  []map[string]any
		}
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response.Source) != 2 || len(response.Shaped) != 1 {
			t.Fatalf("Expected 2 source and 1 shaped runes, got %d and %d", len(response.Source), len(response.Shaped))
		}
		if response.Source[0]["name"] != "ARABIC LETTER LAM" {
			t.Errorf("Expected ARABIC LETTER LAM, got %v", response.Source[0]["name"])
		}
	})

	t.Run("GET /api/inspect bad parameters", func(t *testing.T) {
		for _, target := range []string{"/api/inspect", "/api/inspect?text=a&logical=maybe"} {
			req := httptest.NewRequest("GET", target, nil)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", target, w.Code)
			}
		}
	})

	t.Run("GET /api/source", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/source", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var response struct {
			Success bool              `json:"success"`
			File    string            `json:"file"`
			Count   int               `json:"count"`
			Entries []exporter.Record `json:"entries"`
		}
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.File != "source.json" {
			t.Errorf("Expected file=source.json, got %q", response.File)
		}
		if response.Count != 2 {
			t.Errorf("Expected count=2, got %d", response.Count)
		}
		if response.Entries[1].Key != "title" || response.Entries[1].Shaped != "ﺔﻴﺑﺭﻌﻟﺍ" {
			t.Errorf("Unexpected entry %+v", response.Entries[1])
		}
	})

	t.Run("GET /", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Expected Content-Type text/html; charset=utf-8, got %s", ct)
		}
	})
}

func TestServerWithoutSource(t *testing.T) {
	srv, err := NewServer(Options{})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	req := httptest.NewRequest("GET", "/api/source", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	if err := srv.StartWatching(0); err == nil {
		t.Error("Expected error when watching without a source file")
	}
}

func TestNewServerUnsupportedSource(t *testing.T) {
	_, err := NewServer(Options{SourcePath: "data.db"})
	if !errors.Is(err, datasource.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCheckOrigin(t *testing.T) {
	srv, err := NewServer(Options{AllowedOrigins: []string{"http://localhost:8080"}})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	tests := []struct {
		origin   string
		expected bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"http://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := srv.checkOrigin(req); got != tt.expected {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.expected)
		}
	}
}

func dialWebSocket(t *testing.T, testServer *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + testServer.URL[4:] + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	return ws
}

// TestWebSocketShaping tests shaping over a WebSocket connection
func TestWebSocketShaping(t *testing.T) {
	srv, err := NewServer(Options{})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	testServer := httptest.NewServer(srv.router)
	defer testServer.Close()

	ws := dialWebSocket(t, testServer)
	defer ws.Close()

	tests := []struct {
		name     string
		message  []byte
		expected string
	}{
		{"plain text", []byte("لا"), "ﻻ"},
		{"json request", []byte(`{"text": "لا", "no_ligatures": true}`), "ﺎﻟ"},
		{"latin", []byte("hello"), "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ws.WriteMessage(websocket.TextMessage, tt.message); err != nil {
				t.Fatalf("Failed to send message: %v", err)
			}

			var response ShapeResponse
			ws.SetReadDeadline(time.Now().Add(2 * time.Second))
			if err := ws.ReadJSON(&response); err != nil {
				t.Fatalf("Failed to read response: %v", err)
			}
			if response.Type != "shaped" {
				t.Errorf("Expected type=shaped, got %q", response.Type)
			}
			if response.Shaped != tt.expected {
				t.Errorf("Expected shaped=%q, got %q", tt.expected, response.Shaped)
			}
		})
	}
}

// TestWebSocketInitialBeforeUpdates checks that a client connecting while
// updates are broadcast still gets the initial entries first
func TestWebSocketInitialBeforeUpdates(t *testing.T) {
	jsonFile := filepath.Join(t.TempDir(), "source.json")
	writeSource(t, jsonFile, map[string]string{"101": "لا"})

	srv, err := NewServer(Options{SourcePath: jsonFile})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	testServer := httptest.NewServer(srv.router)
	defer testServer.Close()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				srv.broadcastUpdate()
				time.Sleep(time.Millisecond)
			}
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	for i := 0; i < 5; i++ {
		ws := dialWebSocket(t, testServer)
		var msg ChangeSet
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		err := ws.ReadJSON(&msg)
		ws.Close()
		if err != nil {
			t.Fatalf("Failed to read first message: %v", err)
		}
		if msg.Type != "initial" {
			t.Fatalf("Connection %d: expected first message type=initial, got %q", i, msg.Type)
		}
	}
}

// TestWebSocketUpdates tests WebSocket broadcasting of changes
func TestWebSocketUpdates(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "source.json")

	testData := map[string]string{
		"101": "سلام",
	}
	writeSource(t, jsonFile, testData)

	srv, err := NewServer(Options{SourcePath: jsonFile})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	// Start file watching with 0 debounce for tests
	if err := srv.StartWatching(0); err != nil {
		t.Fatalf("Failed to start watching: %v", err)
	}

	testServer := httptest.NewServer(srv.router)
	defer testServer.Close()

	ws := dialWebSocket(t, testServer)
	defer ws.Close()

	var initialMsg ChangeSet
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := ws.ReadJSON(&initialMsg); err != nil {
		t.Fatalf("Failed to read initial message: %v", err)
	}
	if initialMsg.Type != "initial" {
		t.Errorf("Expected type=initial, got %v", initialMsg.Type)
	}
	if len(initialMsg.Added) != 1 || initialMsg.Added[0].Shaped != "\ufee1\ufe8d\ufee0\ufeb3" {
		t.Errorf("Unexpected initial records %+v", initialMsg.Added)
	}

	// Give file watcher time to settle after initial file creation
	time.Sleep(200 * time.Millisecond)

	// readUntil skips intermediate updates, e.g. from a half written file
	readUntil := func(what string, done func(ChangeSet) bool) ChangeSet {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			var msg ChangeSet
			if err := ws.ReadJSON(&msg); err != nil {
				t.Fatalf("Failed to read %s message: %v", what, err)
			}
			if done(msg) {
				return msg
			}
		}
	}

	testData["102"] = "لا"
	writeSource(t, jsonFile, testData)

	updateMsg := readUntil("add", func(c ChangeSet) bool { return len(c.Added) > 0 })
	if updateMsg.Type != "update" {
		t.Errorf("Expected type=update, got %v", updateMsg.Type)
	}
	if len(updateMsg.Added) != 1 || updateMsg.Added[0].Key != "102" {
		t.Errorf("Expected record 102 to be added, got %+v", updateMsg.Added)
	}

	testData["101"] = "مرحبا"
	writeSource(t, jsonFile, testData)

	modifyMsg := readUntil("modify", func(c ChangeSet) bool { return len(c.Modified) > 0 })
	if modifyMsg.Modified[0].Key != "101" || modifyMsg.Modified[0].Shaped != "ﺎﺒﺣﺭﻣ" {
		t.Errorf("Unexpected modified record %+v", modifyMsg.Modified[0])
	}

	delete(testData, "101")
	writeSource(t, jsonFile, testData)

	deleteMsg := readUntil("delete", func(c ChangeSet) bool { return len(c.Deleted) > 0 })
	if len(deleteMsg.Deleted) != 1 || deleteMsg.Deleted[0] != "101" {
		t.Errorf("Expected deleted key=101, got %v", deleteMsg.Deleted)
	}
	if deleteMsg.TotalCount != 1 {
		t.Errorf("Expected total_count=1, got %d", deleteMsg.TotalCount)
	}
}

// TestComputeChanges tests the change detection logic
func TestComputeChanges(t *testing.T) {
	srv := &Server{}

	record := func(key, shaped string) exporter.Record {
		return exporter.Record{Key: key, Source: key, Shaped: shaped}
	}

	// No previous records: all are new
	changes := srv.computeChanges([]exporter.Record{record("1", "a"), record("2", "b")})
	if changes.Type != "update" {
		t.Errorf("Expected type=update, got %v", changes.Type)
	}
	if len(changes.Added) != 2 {
		t.Errorf("Expected 2 added records, got %d", len(changes.Added))
	}

	// Add one, modify one
	changes = srv.computeChanges([]exporter.Record{record("1", "a"), record("2", "B"), record("3", "c")})
	if len(changes.Added) != 1 || changes.Added[0].Key != "3" {
		t.Errorf("Expected record 3 added, got %+v", changes.Added)
	}
	if len(changes.Modified) != 1 || changes.Modified[0].Key != "2" {
		t.Errorf("Expected record 2 modified, got %+v", changes.Modified)
	}
	if len(changes.Deleted) != 0 {
		t.Errorf("Expected no deletions, got %v", changes.Deleted)
	}

	// Delete two
	changes = srv.computeChanges([]exporter.Record{record("2", "B")})
	if len(changes.Deleted) != 2 || changes.Deleted[0] != "1" || changes.Deleted[1] != "3" {
		t.Errorf("Expected records 1 and 3 deleted, got %v", changes.Deleted)
	}
	if changes.TotalCount != 1 {
		t.Errorf("Expected total_count=1, got %d", changes.TotalCount)
	}

	// Nothing changed
	changes = srv.computeChanges([]exporter.Record{record("2", "B")})
	if len(changes.Added)+len(changes.Modified)+len(changes.Deleted) != 0 {
		t.Errorf("Expected empty change set, got %+v", changes)
	}
}

func TestChangeSetJSON(t *testing.T) {
	data, err := json.Marshal(ChangeSet{Type: "update", TotalCount: 0})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if bytes.Contains(data, []byte("added")) {
		t.Errorf("Expected empty lists to be omitted, got %s", data)
	}
}
