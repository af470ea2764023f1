package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/atomicdeploy/arshape/pkg/codepoint"
	"github.com/atomicdeploy/arshape/pkg/datasource"
	"github.com/atomicdeploy/arshape/pkg/exporter"
	"github.com/atomicdeploy/arshape/pkg/inspect"
	"github.com/atomicdeploy/arshape/pkg/shaper"
	"github.com/atomicdeploy/arshape/pkg/watcher"
	"github.com/atomicdeploy/arshape/web"
)

// maxRequestBytes limits the body of shaping requests
const maxRequestBytes = 1 << 20

// Options configure a Server
type Options struct {
	// SourcePath is a text, JSON or CSV file whose entries are served
	// shaped. It is optional.
	SourcePath string
	// Column selects the CSV column of the source file.
	Column string
	// AllowedOrigins restricts WebSocket connections by Origin header.
	// Empty allows every origin.
	AllowedOrigins []string
}

// Server represents the HTTP/WebSocket server
type Server struct {
	router      *mux.Router
	opts        Options
	exporter    *exporter.Exporter
	watcher     *watcher.FileWatcher
	httpServer  *http.Server
	httpMu      sync.Mutex
	wsClients   map[*client]bool
	wsClientsMu sync.RWMutex
	upgrader    websocket.Upgrader
	lastRecords map[string]exporter.Record
	lastMu      sync.Mutex
}

// client serializes writes to one WebSocket connection
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

// ShapeRequest is the body of POST /api/shape and of JSON WebSocket messages
type ShapeRequest struct {
	Text        string `json:"text"`
	Logical     bool   `json:"logical"`
	NoLigatures bool   `json:"no_ligatures"`
}

func (r ShapeRequest) options() shaper.Options {
	return shaper.Options{Logical: r.Logical, NoLigatures: r.NoLigatures}
}

// ShapeResponse is the answer to a ShapeRequest
type ShapeResponse struct {
	Type       string   `json:"type,omitempty"`
	Success    bool     `json:"success"`
	Text       string   `json:"text"`
	Shaped     string   `json:"shaped"`
	Codepoints string   `json:"codepoints"`
	Stages     []string `json:"stages"`
}

// ChangeSet represents incremental changes to the source file
type ChangeSet struct {
	Type       string            `json:"type"`
	Timestamp  string            `json:"timestamp"`
	Added      []exporter.Record `json:"added,omitempty"`
	Modified   []exporter.Record `json:"modified,omitempty"`
	Deleted    []string          `json:"deleted,omitempty"`
	TotalCount int               `json:"total_count"`
}

// NewServer creates a new server instance
func NewServer(opts Options) (*Server, error) {
	if opts.SourcePath != "" {
		if _, err := datasource.NewDataSource(opts.SourcePath); err != nil {
			return nil, err
		}
	}

	s := &Server{
		router:    mux.NewRouter(),
		opts:      opts,
		exporter:  exporter.NewExporter(shaper.Shape),
		wsClients: make(map[*client]bool),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// Allow empty origin (direct connections, testing)
	if origin == "" || len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	if slices.Contains(s.opts.AllowedOrigins, origin) {
		return true
	}
	log.Printf("⚠️  Rejected WebSocket connection from origin: %s", origin)
	return false
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleWelcome).Methods("GET")
	s.router.HandleFunc("/api/shape", s.handleShape).Methods("POST")
	s.router.HandleFunc("/api/inspect", s.handleInspect).Methods("GET")
	s.router.HandleFunc("/api/source", s.handleSource).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleWelcome serves the welcome page
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.WelcomeHTML)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func shapeText(req ShapeRequest) ShapeResponse {
	opts := req.options()
	shaped := shaper.ShapeWith(req.Text, opts)
	return ShapeResponse{
		Success:    true,
		Text:       req.Text,
		Shaped:     shaped,
		Codepoints: codepoint.Format(shaped),
		Stages:     shaper.Stages(opts),
	}
}

// handleShape shapes the text of a JSON request body
func (s *Server) handleShape(w http.ResponseWriter, r *http.Request) {
	var req ShapeRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, shapeText(req))
}

// handleInspect describes the runes of text before and after shaping
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("text") {
		http.Error(w, "Missing text parameter", http.StatusBadRequest)
		return
	}

	var req ShapeRequest
	req.Text = query.Get("text")
	for name, flag := range map[string]*bool{"logical": &req.Logical, "no_ligatures": &req.NoLigatures} {
		if v := query.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, fmt.Sprintf("Invalid %s parameter: %v", name, err), http.StatusBadRequest)
				return
			}
			*flag = b
		}
	}

	comparison := inspect.Compare(req.Text, req.options())
	writeJSON(w, map[string]any{
		"success": true,
		"source":  comparison.Source,
		"shaped":  comparison.Shaped,
	})
}

// readRecords reads the source file and shapes its entries
func (s *Server) readRecords() ([]exporter.Record, error) {
	var opts []datasource.Option
	if s.opts.Column != "" {
		opts = append(opts, datasource.WithColumn(s.opts.Column))
	}
	ds, err := datasource.NewDataSource(s.opts.SourcePath, opts...)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	entries, err := ds.GetEntries()
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return s.exporter.ConvertEntries(entries), nil
}

// handleSource returns the shaped entries of the source file
func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	if s.opts.SourcePath == "" {
		http.Error(w, "No source file configured", http.StatusNotFound)
		return
	}

	records, err := s.readRecords()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read source: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"file":    filepath.Base(s.opts.SourcePath),
		"count":   len(records),
		"entries": records,
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}
	c := &client{conn: conn}

	// the initial entries go out before any update can reach the client
	if s.opts.SourcePath != "" {
		s.sendRecordsToClient(c)
	}

	s.wsClientsMu.Lock()
	s.wsClients[c] = true
	total := len(s.wsClients)
	s.wsClientsMu.Unlock()

	log.Printf("🔌 New WebSocket connection (total: %d)", total)

	go s.readLoop(c)
}

// readLoop answers every text message with its shaped form until the
// connection closes. A message is either a JSON ShapeRequest or plain text.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.wsClientsMu.Lock()
		delete(s.wsClients, c)
		remaining := len(s.wsClients)
		s.wsClientsMu.Unlock()
		c.conn.Close()
		log.Printf("🔌 WebSocket disconnected (remaining: %d)", remaining)
	}()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req ShapeRequest
		if err := json.Unmarshal(data, &req); err != nil {
			req = ShapeRequest{Text: string(data)}
		}

		resp := shapeText(req)
		resp.Type = "shaped"
		if err := c.send(resp); err != nil {
			log.Printf("Failed to send to WebSocket: %v", err)
			return
		}
	}
}

// sendRecordsToClient sends the current shaped entries to a WebSocket client
func (s *Server) sendRecordsToClient(c *client) {
	records, err := s.readRecords()
	if err != nil {
		log.Printf("Failed to read source: %v", err)
		return
	}

	s.lastMu.Lock()
	if s.lastRecords == nil {
		s.lastRecords = recordMap(records)
	}
	s.lastMu.Unlock()

	message := ChangeSet{
		Type:       "initial",
		Timestamp:  time.Now().Format(time.RFC3339),
		Added:      records,
		TotalCount: len(records),
	}
	if err := c.send(message); err != nil {
		log.Printf("Failed to send to WebSocket: %v", err)
	}
}

func recordMap(records []exporter.Record) map[string]exporter.Record {
	m := make(map[string]exporter.Record, len(records))
	for _, record := range records {
		m[record.Key] = record
	}
	return m
}

// computeChanges compares records with the last state sent to clients and
// makes them the new last state.
func (s *Server) computeChanges(records []exporter.Record) ChangeSet {
	changes := ChangeSet{
		Type:       "update",
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalCount: len(records),
	}

	current := recordMap(records)

	s.lastMu.Lock()
	defer s.lastMu.Unlock()

	for _, record := range records {
		old, exists := s.lastRecords[record.Key]
		switch {
		case !exists:
			changes.Added = append(changes.Added, record)
		case old != record:
			changes.Modified = append(changes.Modified, record)
		}
	}
	for key := range s.lastRecords {
		if _, exists := current[key]; !exists {
			changes.Deleted = append(changes.Deleted, key)
		}
	}
	slices.Sort(changes.Deleted)

	s.lastRecords = current
	return changes
}

// broadcastUpdate sends source file changes to all connected WebSocket clients
func (s *Server) broadcastUpdate() {
	records, err := s.readRecords()
	if err != nil {
		log.Printf("Failed to read source: %v", err)
		return
	}
	changes := s.computeChanges(records)

	s.wsClientsMu.RLock()
	clients := make([]*client, 0, len(s.wsClients))
	for c := range s.wsClients {
		clients = append(clients, c)
	}
	s.wsClientsMu.RUnlock()

	if len(clients) == 0 {
		return
	}

	log.Printf("📡 Broadcasting update to %d clients", len(clients))

	for _, c := range clients {
		go func(c *client) {
			if err := c.send(changes); err != nil {
				log.Printf("Failed to send to WebSocket: %v", err)
			}
		}(c)
	}
}

// StartWatching starts watching the source file for changes with the specified debounce duration
func (s *Server) StartWatching(debounceDuration time.Duration) error {
	if s.opts.SourcePath == "" {
		return errors.New("no source file to watch")
	}

	fw, err := watcher.NewFileWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fw.Watch(s.opts.SourcePath, func(path string) {
		s.broadcastUpdate()
	}, debounceDuration); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch file: %w", err)
	}

	s.watcher = fw
	fw.Start()
	log.Printf("👀 Watching source file: %s", filepath.Base(s.opts.SourcePath))

	return nil
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	if s.opts.SourcePath != "" {
		if _, err := os.Stat(s.opts.SourcePath); os.IsNotExist(err) {
			return fmt.Errorf("source file does not exist: %s", s.opts.SourcePath)
		}
		log.Printf("📄 Serving source file: %s", filepath.Base(s.opts.SourcePath))
	}
	log.Printf("🚀 Starting server on %s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpMu.Lock()
	s.httpServer = srv
	s.httpMu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close cleans up server resources
func (s *Server) Close() error {
	var errs []error
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	s.httpMu.Lock()
	srv := s.httpServer
	s.httpMu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, srv.Shutdown(ctx))
	}

	s.wsClientsMu.Lock()
	for c := range s.wsClients {
		c.conn.Close()
	}
	s.wsClientsMu.Unlock()

	return errors.Join(errs...)
}
