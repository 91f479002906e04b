package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ChevesR/ibit-strategy-v5/internal/calculator"
	"github.com/ChevesR/ibit-strategy-v5/internal/dashboard"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
	"github.com/ChevesR/ibit-strategy-v5/internal/portfolio"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Row   int    `json:"row,omitempty"`
}

type modelResponse struct {
	Model      *model.PowerLawModel `json:"model"`
	ModelError string               `json:"model_error,omitempty"`
	Overlay    []model.OverlayPoint `json:"overlay"`
}

type portfolioResponse struct {
	Source           string          `json:"source"`
	Holdings         []model.Holding `json:"holdings"`
	EquivalentShares float64         `json:"ibit_equivalent_shares"`
	GoalShares       float64         `json:"goal_shares"`
	GoalProgress     float64         `json:"goal_progress"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var ihe *model.InvalidHoldingError
	if errors.As(err, &ihe) {
		resp.Field = ihe.Field
		resp.Row = ihe.Row
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"has_snapshot":  s.cfg.Store.Snapshot() != nil,
		"has_portfolio": s.cfg.Store.Portfolio() != nil,
	})
}

// build renders the dashboard, answering 503 itself when no prices are loaded yet.
func (s *Server) build(w http.ResponseWriter) (*dashboard.Dashboard, bool) {
	d, err := s.cfg.Dashboard.Build(s.cfg.Store.Snapshot(), s.cfg.Store.Portfolio(), s.cfg.Now())
	if err != nil {
		if errors.Is(err, dashboard.ErrNoSnapshot) {
			s.writeError(w, http.StatusServiceUnavailable, err)
			return nil, false
		}
		s.log.Error().Err(err).Msg("Failed to build dashboard")
		s.writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return d, true
}

// handlePrices handles GET /api/prices
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.build(w); ok {
		s.writeJSON(w, http.StatusOK, d.Prices)
	}
}

// handleDashboard handles GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.build(w); ok {
		s.writeJSON(w, http.StatusOK, d)
	}
}

// handleModel handles GET /api/model
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.build(w); ok {
		s.writeJSON(w, http.StatusOK, modelResponse{Model: d.Model, ModelError: d.ModelError, Overlay: d.Overlay})
	}
}

// handleUploadPortfolio handles POST /api/portfolio (multipart field "file").
func (s *Server) handleUploadPortfolio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("expected a multipart upload under 10 MiB"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New(`missing form field "file"`))
		return
	}
	defer file.Close()

	p, err := s.cfg.Parser.Parse(header.Filename, file)
	if err != nil {
		// Holding errors are the user's data; anything else is an unreadable file.
		var ihe *model.InvalidHoldingError
		if !errors.As(err, &ihe) && !errors.Is(err, portfolio.ErrUnsupportedFormat) {
			s.log.Warn().Err(err).Str("file", header.Filename).Msg("Failed to read portfolio upload")
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	p.UploadedAt = s.cfg.Now()
	s.cfg.Store.SetPortfolio(p)

	s.log.Info().Str("file", p.Source).Int("holdings", len(p.Holdings)).Msg("Portfolio uploaded")
	s.writeJSON(w, http.StatusCreated, s.portfolioSummary(p))
}

// handleGetPortfolio handles GET /api/portfolio
func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p := s.cfg.Store.Portfolio()
	if p == nil {
		s.writeError(w, http.StatusNotFound, errors.New(dashboard.UploadHint))
		return
	}
	s.writeJSON(w, http.StatusOK, s.portfolioSummary(p))
}

// handleClearPortfolio handles DELETE /api/portfolio
func (s *Server) handleClearPortfolio(w http.ResponseWriter, r *http.Request) {
	s.cfg.Store.ClearPortfolio()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) portfolioSummary(p *model.Portfolio) portfolioResponse {
	settings := s.cfg.Dashboard.Settings()
	shares := p.IBITEquivalentShares(settings.FBTCRatio)
	return portfolioResponse{
		Source:           p.Source,
		Holdings:         p.Holdings,
		EquivalentShares: shares,
		GoalShares:       settings.GoalShares,
		GoalProgress:     calculator.GoalProgress(shares, settings.GoalShares),
	}
}
