package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pbaille/fretnote/internal/domain"
	"github.com/pbaille/fretnote/internal/fretboard"
	"github.com/pbaille/fretnote/internal/pitch"
	"go.uber.org/zap"
)

// Server exposes the fretboard engine over HTTP
type Server struct {
	engine  *fretboard.Engine
	rounds  *roundStore
	metrics *Metrics
	logger  *zap.Logger
	addr    string
}

// New creates a new API server. maxRounds bounds the in-memory quiz rounds.
func New(engine *fretboard.Engine, addr string, maxRounds int, logger *zap.Logger) *Server {
	return &Server{
		engine:  engine,
		rounds:  newRoundStore(maxRounds),
		metrics: NewMetrics("fretnote"),
		logger:  logger,
		addr:    addr,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Engine
	mux.HandleFunc("GET /position", s.generatePosition)
	mux.HandleFunc("GET /strings/{id}", s.openNote)
	mux.HandleFunc("GET /resolve", s.resolve)

	// Quiz rounds
	mux.HandleFunc("POST /rounds", s.createRound)
	mux.HandleFunc("GET /rounds/{id}", s.getRound)
	mux.HandleFunc("GET /rounds/{id}/answer", s.roundAnswer)

	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /health", s.health)

	var h http.Handler = withCORS(mux)
	h = requestLogger(s.logger, s.metrics)(h)
	h = chimw.Recoverer(h)
	h = chimw.RequestID(h)
	return h
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.logger.Info("starting server", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PositionResponse is a generated position with its open-string label
type PositionResponse struct {
	Position domain.FretPosition `json:"position"`
	OpenNote string              `json:"open_note"`
}

// NoteResponse is a resolved position
type NoteResponse struct {
	Position domain.FretPosition `json:"position"`
	Note     domain.ResolvedNote `json:"note"`
	Name     string              `json:"name"`
	Label    string              `json:"label"`
	MIDI     *uint8              `json:"midi,omitempty"`
}

// GenerateRequest is the optional body of POST /rounds
type GenerateRequest struct {
	MaxFret   int `json:"max_fret,omitempty"`
	MaxString int `json:"max_string,omitempty"`
}

// Round is a generated position whose answer is revealed separately
type Round struct {
	ID        string              `json:"id"`
	Position  domain.FretPosition `json:"position"`
	OpenNote  string              `json:"open_note"`
	CreatedAt time.Time           `json:"created_at"`
}

// AnswerResponse reveals the note of a round
type AnswerResponse struct {
	Round Round        `json:"round"`
	Note  NoteResponse `json:"answer"`
}

func (s *Server) generatePosition(w http.ResponseWriter, r *http.Request) {
	maxFret, err := queryInt(r, "max_fret", 0)
	if err != nil || maxFret < 0 {
		writeError(w, http.StatusBadRequest, "max_fret must be a non-negative integer")
		return
	}
	maxString, err := queryInt(r, "max_string", 0)
	if err != nil || maxString < 0 {
		writeError(w, http.StatusBadRequest, "max_string must be a non-negative integer")
		return
	}

	resp, err := s.generate(maxFret, maxString)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) generate(maxFret, maxString int) (PositionResponse, error) {
	pos := s.engine.GeneratePosition(maxFret, maxString)
	label, err := s.engine.OpenNoteLabel(pos.String)
	if err != nil {
		return PositionResponse{}, err
	}
	s.metrics.PositionsGenerated.Inc()
	return PositionResponse{Position: pos, OpenNote: label}, nil
}

func (s *Server) openNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "string id must be an integer")
		return
	}

	label, err := s.engine.OpenNoteLabel(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"string":    id,
		"open_note": label,
	})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("string") == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'string' is required")
		return
	}
	str, err := queryInt(r, "string", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "query parameter 'string' must be an integer")
		return
	}
	fret, err := queryInt(r, "fret", -1)
	if err != nil || fret < 0 {
		writeError(w, http.StatusBadRequest, "query parameter 'fret' must be a non-negative integer")
		return
	}

	resp, err := s.resolveNote(domain.FretPosition{String: str, Fret: fret})
	if errors.Is(err, fretboard.ErrUnknownString) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolveNote(pos domain.FretPosition) (NoteResponse, error) {
	note, err := s.engine.ResolveNote(pos)
	if err != nil {
		return NoteResponse{}, err
	}
	s.metrics.NotesResolved.WithLabelValues(note.Name()).Inc()

	resp := NoteResponse{
		Position: pos,
		Note:     note,
		Name:     note.Name(),
		Label:    note.Label(),
	}
	if key, err := pitch.Of(pos); err == nil {
		resp.MIDI = &key
	}
	return resp, nil
}

func (s *Server) createRound(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MaxFret < 0 || req.MaxString < 0 {
		writeError(w, http.StatusBadRequest, "bounds must be non-negative")
		return
	}

	gen, err := s.generate(req.MaxFret, req.MaxString)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	round := Round{
		ID:        uuid.New().String(),
		Position:  gen.Position,
		OpenNote:  gen.OpenNote,
		CreatedAt: time.Now(),
	}
	s.rounds.add(round)

	s.logger.Debug("round created",
		zap.String("id", round.ID),
		zap.Int("string", round.Position.String),
		zap.Int("fret", round.Position.Fret),
	)
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) getRound(w http.ResponseWriter, r *http.Request) {
	round, ok := s.rounds.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) roundAnswer(w http.ResponseWriter, r *http.Request) {
	round, ok := s.rounds.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}

	note, err := s.resolveNote(round.Position)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AnswerResponse{Round: round, Note: note})
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
