// Package dashboard assembles the values the dashboard displays from a market
// snapshot, an optional uploaded portfolio and the current time.
package dashboard

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChevesR/ibit-strategy-v5/internal/calculator"
	"github.com/ChevesR/ibit-strategy-v5/internal/model"
	"github.com/ChevesR/ibit-strategy-v5/internal/strategy"
)

// UploadHint is shown while no portfolio has been uploaded.
const UploadHint = "Upload your portfolio Excel file to see commentary and goal tracking."

// ErrNoSnapshot is returned when no market data has been collected yet.
var ErrNoSnapshot = errors.New("no market snapshot available")

// Settings carries the tunable business constants.
type Settings struct {
	GoalShares  float64
	FBTCRatio   float64
	HorizonDays int
	StepDays    int
}

// DefaultSettings returns the goal of 1756 IBIT shares, 1:1 FBTC conversion
// and a five year projection in 30 day steps.
func DefaultSettings() Settings {
	return Settings{
		GoalShares:  calculator.DefaultGoalShares,
		FBTCRatio:   1,
		HorizonDays: 1800,
		StepDays:    30,
	}
}

// Prices are the live quotes shown in the sidebar.
type Prices struct {
	ReferenceSymbol string    `json:"reference_symbol"`
	ReferencePrice  float64   `json:"reference_price"`
	TrackingSymbol  string    `json:"tracking_symbol"`
	TrackingPrice   float64   `json:"tracking_price"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// PortfolioView is everything derived from an uploaded portfolio.
type PortfolioView struct {
	Source           string                   `json:"source"`
	Holdings         []model.Holding          `json:"holdings"`
	IBITShares       float64                  `json:"ibit_shares"`
	FBTCShares       float64                  `json:"fbtc_shares"`
	EquivalentShares float64                  `json:"ibit_equivalent_shares"`
	GoalShares       float64                  `json:"goal_shares"`
	GoalProgress     float64                  `json:"goal_progress"`
	CurrentValue     float64                  `json:"current_value"`
	Projection       *model.Projection        `json:"projection,omitempty"`
	OneYearValue     float64                  `json:"one_year_value"`
	Options          []model.OptionCommentary `json:"options"`
	Errors           []string                 `json:"errors,omitempty"`
}

// Dashboard is one complete render of the dashboard.
type Dashboard struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Prices      Prices               `json:"prices"`
	Model       *model.PowerLawModel `json:"model,omitempty"`
	ModelError  string               `json:"model_error,omitempty"`
	Overlay     []model.OverlayPoint `json:"overlay,omitempty"`
	Portfolio   *PortfolioView       `json:"portfolio,omitempty"`
	Hint        string               `json:"hint,omitempty"`
}

// Service builds dashboards. It holds no per-request state.
type Service struct {
	settings Settings
	log      zerolog.Logger
}

// NewService creates a Service.
func NewService(settings Settings, log zerolog.Logger) *Service {
	return &Service{settings: settings, log: log.With().Str("component", "dashboard").Logger()}
}

// Settings returns the constants the service was built with.
func (s *Service) Settings() Settings { return s.settings }

// Build computes a dashboard. p may be nil when nothing was uploaded.
func (s *Service) Build(snap *model.MarketSnapshot, p *model.Portfolio, now time.Time) (*Dashboard, error) {
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	d := &Dashboard{
		GeneratedAt: now,
		Prices: Prices{
			ReferenceSymbol: snap.ReferenceSymbol,
			ReferencePrice:  snap.ReferencePrice,
			TrackingSymbol:  snap.TrackingSymbol,
			TrackingPrice:   snap.TrackingPrice,
			FetchedAt:       snap.FetchedAt,
		},
	}

	history := calculator.FilterPositive(snap.History)
	fit, err := calculator.Fit(history)
	if err != nil {
		if !errors.Is(err, calculator.ErrInsufficientData) {
			return nil, err
		}
		s.log.Warn().Err(err).Msg("skipping power-law overlay")
		d.ModelError = err.Error()
	} else {
		d.Model = &fit
		d.Overlay = calculator.Overlay(history, fit)
	}

	if p == nil {
		d.Hint = UploadHint
		return d, nil
	}

	view, err := s.portfolioView(snap, p, d.Model, calculator.LastDayOffset(history), now)
	if err != nil {
		return nil, err
	}
	d.Portfolio = view
	return d, nil
}

func (s *Service) portfolioView(snap *model.MarketSnapshot, p *model.Portfolio, fit *model.PowerLawModel, lastDayOffset int, now time.Time) (*PortfolioView, error) {
	shares := p.IBITEquivalentShares(s.settings.FBTCRatio)
	view := &PortfolioView{
		Source:           p.Source,
		Holdings:         p.Holdings,
		IBITShares:       p.Shares(model.HoldingIBITShare),
		FBTCShares:       p.Shares(model.HoldingFBTCShare),
		EquivalentShares: shares,
		GoalShares:       s.settings.GoalShares,
		GoalProgress:     calculator.GoalProgress(shares, s.settings.GoalShares),
		CurrentValue:     calculator.Value(shares, snap.TrackingPrice),
	}

	if fit != nil {
		proj, err := calculator.Project(*fit, lastDayOffset,
			calculator.SharesFraction(shares, s.settings.GoalShares),
			s.settings.HorizonDays, s.settings.StepDays)
		if err != nil {
			return nil, err
		}
		view.Projection = &proj
		view.OneYearValue = proj.OneYear.Value
	}

	for _, h := range p.Options() {
		c, err := strategy.ClassifyHolding(snap.TrackingPrice, h, now)
		if err != nil {
			s.log.Warn().Err(err).Int("row", h.Row).Msg("option not classified")
			view.Errors = append(view.Errors, err.Error())
			continue
		}
		view.Options = append(view.Options, c)
	}
	return view, nil
}
