package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/histrank/pkg/config"
	"github.com/bastiangx/histrank/pkg/rank"
	"github.com/bastiangx/histrank/pkg/session"
	"github.com/bastiangx/histrank/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for ranked history lookups.
type Server struct {
	sess   *session.Session
	cfg    *config.Config
	opts   rank.Options
	corpus *rank.PrioritizedHistory
	sug    *suggest.Suggester
	reader io.Reader
	writer io.Writer
}

// NewServer creates a history server using stdin/stdout for IPC.
func NewServer(sess *session.Session, cfg *config.Config) *Server {
	return &Server{
		sess:   sess,
		cfg:    cfg,
		opts:   cfg.RankOptions(),
		reader: bufio.NewReader(os.Stdin),
		writer: os.Stdout,
	}
}

// rebuild reranks the store and reindexes the suggester. Any mutation
// of the store invalidates both.
func (s *Server) rebuild() {
	s.corpus = rank.Prioritize(s.sess.Store(), s.opts)
	var items []string
	if s.corpus != nil {
		items = s.corpus.Items
	}
	s.sug = suggest.NewSuggester(items)
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	log.Debug("Starting server.")
	s.rebuild()

	// Signal that the server is ready
	s.sendResponse(StatusResponse{Status: "ready", Count: s.sug.Len()})

	// incoming requests stdin
	dec := msgpack.NewDecoder(s.reader)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request
func (s *Server) handleRequest(req Request) {
	switch req.Op {
	case "query":
		s.handleQuery(req)
	case "remove":
		s.handleRemove(req)
	case "reload":
		s.handleReload(req)
	case "stats":
		s.handleStats(req)
	case "health":
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown op: %s", req.Op), 400)
	}
}

//	sendResponse marshals the given response into msgpack and sends it to the client.
//
// Responses are written back to back on the stream, the client decoder
// picks the values apart without any framing.
func (s *Server) sendResponse(response interface{}) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		log.Errorf("Marshaling response: %v", err)
		s.sendError("", "Internal server error", 500)
		return
	}
	if _, err := s.writer.Write(data); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(RequestError{
		ID:    id,
		Error: message,
		Code:  code,
	})
}

// handleQuery processes a ranked lookup. It validates query bounds from
// the server config, caps the limit, and runs the suggester under the
// requested match mode.
func (s *Server) handleQuery(req Request) {
	query := req.Query

	if len(query) < s.cfg.Server.MinQuery {
		s.sendError(req.ID, fmt.Sprintf("Query must be at least %d characters", s.cfg.Server.MinQuery), 400)
		log.Debug("Query too short in request")
		return
	}
	if len(query) > s.cfg.Server.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", s.cfg.Server.MaxQuery), 400)
		log.Debug("Query too long in request")
		return
	}

	limit := req.Limit
	if limit < 1 || limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	start := time.Now()
	found := s.sug.Query(query, limit, suggest.ParseMode(req.Mode))
	elapsed := time.Since(start)

	items := make([]Candidate, len(found))
	for i, f := range found {
		items[i] = Candidate{Cmd: f.Text, Pos: f.Pos}
	}

	s.sendResponse(QueryResponse{
		ID:        req.ID,
		Items:     items,
		Count:     len(items),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleRemove drops every history occurrence of one exact command,
// rewrites the file, and reranks. The response includes the reload
// directive while the session stays dirty.
func (s *Server) handleRemove(req Request) {
	if req.Command == "" {
		s.sendError(req.ID, "Missing 'cmd' parameter", 400)
		log.Debug("Command is empty in remove request")
		return
	}

	removed, err := s.sess.RemoveAll(req.Command)
	if err != nil {
		s.sendError(req.ID, fmt.Sprintf("Removing %q: %v", req.Command, err), 500)
		return
	}
	if removed > 0 {
		s.rebuild()
	}

	resp := RemoveResponse{
		ID:      req.ID,
		Status:  "ok",
		Removed: removed,
	}
	if s.sess.Dirty() {
		resp.Reload = s.sess.Store().Format().ReloadCmd()
	}
	s.sendResponse(resp)
}

// handleReload re-reads the history file and reranks
func (s *Server) handleReload(req Request) {
	if err := s.sess.Reload(); err != nil {
		s.sendError(req.ID, fmt.Sprintf("Reloading history: %v", err), 500)
		return
	}
	s.rebuild()
	s.sendResponse(StatusResponse{
		ID:     req.ID,
		Status: "ok",
		Count:  s.sug.Len(),
	})
}

// handleStats reports the ranking pipeline counters
func (s *Server) handleStats(req Request) {
	st := s.sess.Store()
	resp := StatsResponse{
		ID:     req.ID,
		Status: "ok",
		Path:   st.Path(),
		Format: st.Format().String(),
		Dirty:  s.sess.Dirty(),
	}
	if s.corpus != nil {
		resp.RawEntries = s.corpus.Stats.RawEntries
		resp.Ranked = s.corpus.Stats.Ranked
		resp.Blacklisted = s.corpus.Stats.Blacklisted
		resp.Skipped = s.corpus.Stats.Skipped
		resp.KeySpace = s.corpus.Stats.KeySpace
		resp.MaxKey = s.corpus.Stats.MaxKey
	}
	s.sendResponse(resp)
}
