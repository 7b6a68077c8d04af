package engine

import (
	"fmt"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Sizing and selection defaults applied by New for zero-valued config fields.
const (
	defaultShortWidthFactor = 1.25
	defaultWingWidthRatio   = 0.04
	defaultUnlimitedCapPct  = 0.01
	defaultDefinedRiskPct   = 0.05
	// maxUnlimitedCapPct is the hard ceiling on the unlimited-risk sizing cap
	maxUnlimitedCapPct = 0.01
)

// Config tunes the engine. Zero values get defaults from New.
type Config struct {
	Validator ValidatorConfig
	Strangle  StrangleConfig
	Condor    CondorConfig
	Butterfly ButterflyConfig
	Sizing    SizingConfig
}

// SizingConfig controls position-size recommendations.
type SizingConfig struct {
	// UnlimitedRiskCapPct caps unlimited-risk strategies at this fraction
	// of portfolio value. Hard ceiling of 1%.
	UnlimitedRiskCapPct float64
	// DefinedRiskAllocationPct is the portfolio fraction allocatable to a
	// defined-risk position.
	DefinedRiskAllocationPct float64
}

// Engine routes a strategy type to its calculator, validating chain data
// first. One Engine may serve concurrent valuations; it is immutable after
// construction.
type Engine struct {
	cfg       Config
	sel       Selector
	validator *Validator
}

// New creates an engine, applying defaults for zero config fields.
func New(cfg Config) (*Engine, error) {
	if cfg.Strangle.ShortWidthFactor == 0 {
		cfg.Strangle.ShortWidthFactor = defaultShortWidthFactor
	}
	if cfg.Strangle.ShortWidthFactor < 1 {
		return nil, fmt.Errorf("short width factor must be >= 1 (got %.2f)", cfg.Strangle.ShortWidthFactor)
	}
	if cfg.Condor.WingWidthRatio == 0 {
		cfg.Condor.WingWidthRatio = defaultWingWidthRatio
	}
	if cfg.Condor.WingWidthRatio < 0 {
		return nil, fmt.Errorf("condor wing width ratio must be positive (got %.4f)", cfg.Condor.WingWidthRatio)
	}
	if cfg.Butterfly.WingWidthRatio == 0 {
		cfg.Butterfly.WingWidthRatio = defaultWingWidthRatio
	}
	if cfg.Butterfly.WingWidthRatio < 0 {
		return nil, fmt.Errorf("butterfly wing width ratio must be positive (got %.4f)", cfg.Butterfly.WingWidthRatio)
	}
	if cfg.Sizing.UnlimitedRiskCapPct == 0 {
		cfg.Sizing.UnlimitedRiskCapPct = defaultUnlimitedCapPct
	}
	if cfg.Sizing.UnlimitedRiskCapPct < 0 || cfg.Sizing.UnlimitedRiskCapPct > maxUnlimitedCapPct {
		return nil, fmt.Errorf("unlimited risk cap must be in (0, %.2f] (got %.4f)",
			maxUnlimitedCapPct, cfg.Sizing.UnlimitedRiskCapPct)
	}
	if cfg.Sizing.DefinedRiskAllocationPct == 0 {
		cfg.Sizing.DefinedRiskAllocationPct = defaultDefinedRiskPct
	}
	if cfg.Sizing.DefinedRiskAllocationPct < 0 || cfg.Sizing.DefinedRiskAllocationPct > 1 {
		return nil, fmt.Errorf("defined risk allocation must be in (0, 1] (got %.4f)",
			cfg.Sizing.DefinedRiskAllocationPct)
	}
	return &Engine{
		cfg:       cfg,
		validator: NewValidator(cfg.Validator),
	}, nil
}

// CalculatePosition validates the snapshot, selects legs, and derives the
// full risk profile for the requested strategy. Pure and deterministic:
// identical inputs yield identical results.
func (e *Engine) CalculatePosition(strategyType models.StrategyType, inputs *models.StrategyInputs,
	snap *models.MarketSnapshot) (*models.PositionResult, error) {
	if !strategyType.Valid() {
		return nil, fmt.Errorf("%q: %w", strategyType, ErrUnsupportedStrategy)
	}
	// Work on a copy so the caller's inputs are never written to; one
	// inputs struct may be reused across strategies.
	in := *inputs
	in.StrategyType = strategyType
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid inputs: %w", err)
	}
	if err := e.validateChain(&in, snap); err != nil {
		return nil, err
	}

	var (
		result *models.PositionResult
		err    error
	)
	switch strategyType {
	case models.StrategyLongStrangle:
		result, err = e.buildLongStrangle(&in, snap)
	case models.StrategyShortStrangle:
		result, err = e.buildShortStrangle(&in, snap)
	case models.StrategyIronCondor:
		result, err = e.buildIronCondor(&in, snap)
	case models.StrategyButterflySpread:
		result, err = e.buildButterfly(&in, snap)
	case models.StrategyDiagonalCalendar:
		result, err = e.buildDiagonalCalendar(&in, snap)
	default:
		return nil, fmt.Errorf("%q: %w", strategyType, ErrUnsupportedStrategy)
	}
	if err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("calculator produced inconsistent result: %w", err)
	}
	return result, nil
}

// validateChain runs the market data validator over the chain the chosen
// strategy needs and refuses to proceed on error-severity issues.
func (e *Engine) validateChain(inputs *models.StrategyInputs, snap *models.MarketSnapshot) error {
	chain, ok := snap.Chains[inputs.Expiration]
	if !ok {
		return &InsufficientMarketDataError{
			Symbol:     snap.Symbol,
			Expiration: inputs.Expiration,
			Issues: []Issue{{
				Severity: SeverityError,
				Message:  fmt.Sprintf("expiration %s not present in chain", inputs.Expiration),
			}},
		}
	}

	sides := [][]models.OptionContract{chain.Calls, chain.Puts}
	if inputs.StrategyType == models.StrategyDiagonalCalendar {
		// The far leg's chain is validated too when present; its absence is
		// reported by the calculator.
		for _, exp := range snap.Expirations() {
			if exp > inputs.Expiration {
				sides = append(sides, snap.Chains[exp].Calls)
				break
			}
		}
	}

	result := e.validator.CheckChain(snap.CurrentPrice, sides...)
	if !result.IsValid {
		return &InsufficientMarketDataError{
			Symbol:     snap.Symbol,
			Expiration: inputs.Expiration,
			Issues:     result.Issues,
		}
	}
	return nil
}

// ProfitLossAtPrice returns the per-share P&L of the given legs at an
// underlying price, using the strategy's payoff model. For the diagonal
// calendar this is the same heuristic estimate the calculator uses; for all
// other strategies it is the exact expiration payoff.
func (e *Engine) ProfitLossAtPrice(strategyType models.StrategyType, price float64, legs []models.Leg) (float64, error) {
	if len(legs) == 0 {
		return 0, fmt.Errorf("no legs supplied")
	}
	switch strategyType {
	case models.StrategyLongStrangle, models.StrategyShortStrangle,
		models.StrategyIronCondor, models.StrategyButterflySpread:
		return legsPayoff(legs, price), nil
	case models.StrategyDiagonalCalendar:
		return calendarPayoff(legs, price), nil
	default:
		return 0, fmt.Errorf("%q: %w", strategyType, ErrUnsupportedStrategy)
	}
}

// legsPayoff is the exact expiration payoff of a set of legs: intrinsic
// value settled against premium, leg by leg.
func legsPayoff(legs []models.Leg, price float64) float64 {
	total := 0.0
	for _, leg := range legs {
		total += leg.PayoffAt(price)
	}
	return total
}

// PositionSize is a dollar-denominated sizing recommendation.
type PositionSize struct {
	MaxPositionSize float64 `json:"max_position_size"`
	RecommendedSize float64 `json:"recommended_size"`
	Reasoning       string  `json:"reasoning"`
}

// RecommendedPositionSize sizes a position against portfolio value.
// Unlimited-risk strategies are capped at a small fixed fraction of the
// portfolio; defined-risk strategies scale with max loss per contract.
func (e *Engine) RecommendedPositionSize(result *models.PositionResult, portfolioValue float64) (*PositionSize, error) {
	if portfolioValue <= 0 {
		return nil, fmt.Errorf("portfolio value must be positive (got %.2f)", portfolioValue)
	}

	if result.MaxLoss.Unbounded {
		capSize := portfolioValue * e.cfg.Sizing.UnlimitedRiskCapPct
		return &PositionSize{
			MaxPositionSize: capSize,
			RecommendedSize: capSize,
			Reasoning: fmt.Sprintf("%s carries undefined risk; capped at %.1f%% of portfolio",
				result.StrategyType, e.cfg.Sizing.UnlimitedRiskCapPct*100),
		}, nil
	}

	allocation := portfolioValue * e.cfg.Sizing.DefinedRiskAllocationPct
	riskPerContract := result.MaxLoss.Value * sharesPerContract
	if riskPerContract <= 0 {
		return &PositionSize{
			MaxPositionSize: allocation,
			RecommendedSize: 0,
			Reasoning:       "max loss is zero; nothing at risk to size against",
		}, nil
	}

	contracts := int(allocation / riskPerContract)
	return &PositionSize{
		MaxPositionSize: allocation,
		RecommendedSize: float64(contracts) * riskPerContract,
		Reasoning: fmt.Sprintf("defined risk of %.2f per contract allows %d contracts within %.1f%% of portfolio",
			riskPerContract, contracts, e.cfg.Sizing.DefinedRiskAllocationPct*100),
	}, nil
}

const sharesPerContract = 100.0
