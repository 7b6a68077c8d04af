package engine

import (
	"fmt"

	"github.com/eddiefleurent/schrute_spreads/internal/models"
)

// Validator sanity-check thresholds. Zero values get defaults from
// NewValidator.
const (
	// defaultMaxSpreadRatio flags contracts whose bid/ask spread exceeds
	// this fraction of the midpoint
	defaultMaxSpreadRatio = 0.5
	// defaultMaxOTMPremiumRatio rejects OTM premiums above this fraction of
	// spot
	defaultMaxOTMPremiumRatio = 0.5
	// defaultIntrinsicTolerance is the dollar slack allowed before an ITM
	// premium below intrinsic value is rejected
	defaultIntrinsicTolerance = 0.10
)

// Severity classifies a validation issue.
type Severity string

const (
	// SeverityWarning flags suspicious data that does not block valuation
	SeverityWarning Severity = "warning"
	// SeverityError marks data the calculators must not trust
	SeverityError Severity = "error"
)

// Issue is one problem found in chain data.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationResult is the outcome of checking a chain. IsValid is false only
// when at least one error-severity issue was found; warnings alone do not
// block valuation.
type ValidationResult struct {
	IsValid bool    `json:"is_valid"`
	Issues  []Issue `json:"issues"`
}

// ValidatorConfig holds the sanity-check thresholds.
type ValidatorConfig struct {
	MaxSpreadRatio     float64
	MaxOTMPremiumRatio float64
	IntrinsicTolerance float64
}

// Validator sanity-checks chain data before the calculators trust it.
// Violations are reported, never silently corrected.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator creates a validator, applying defaults for zero thresholds.
func NewValidator(cfg ValidatorConfig) *Validator {
	if cfg.MaxSpreadRatio <= 0 {
		cfg.MaxSpreadRatio = defaultMaxSpreadRatio
	}
	if cfg.MaxOTMPremiumRatio <= 0 {
		cfg.MaxOTMPremiumRatio = defaultMaxOTMPremiumRatio
	}
	if cfg.IntrinsicTolerance <= 0 {
		cfg.IntrinsicTolerance = defaultIntrinsicTolerance
	}
	return &Validator{cfg: cfg}
}

// CheckContract returns the issues found in a single contract priced against
// the given spot.
func (v *Validator) CheckContract(spot float64, c *models.OptionContract) []Issue {
	var issues []Issue

	desc := fmt.Sprintf("%s %.2f %s", c.Type, c.Strike, c.Expiration)

	if c.Bid > c.Ask {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("%s: bid %.2f above ask %.2f", desc, c.Bid, c.Ask),
		})
		// Midpoint-based checks are meaningless on a crossed market.
		return issues
	}

	mid := c.Mid()
	if mid > 0 && (c.Ask-c.Bid)/mid > v.cfg.MaxSpreadRatio {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("%s: spread %.2f is %.0f%% of midpoint %.2f",
				desc, c.Ask-c.Bid, (c.Ask-c.Bid)/mid*100, mid),
		})
	}

	intrinsic := c.Intrinsic(spot)
	if intrinsic == 0 {
		// OTM: premium should be a small fraction of spot.
		if mid > spot*v.cfg.MaxOTMPremiumRatio {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message: fmt.Sprintf("%s: OTM premium %.2f unrealistically large vs spot %.2f",
					desc, mid, spot),
			})
		}
	} else if mid > 0 && mid < intrinsic-v.cfg.IntrinsicTolerance {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message: fmt.Sprintf("%s: premium %.2f below intrinsic value %.2f",
				desc, mid, intrinsic),
		})
	}

	return issues
}

// CheckChain validates every contract in the given slices against spot and
// aggregates the issues.
func (v *Validator) CheckChain(spot float64, sides ...[]models.OptionContract) ValidationResult {
	result := ValidationResult{IsValid: true}
	for _, side := range sides {
		for i := range side {
			issues := v.CheckContract(spot, &side[i])
			for _, issue := range issues {
				if issue.Severity == SeverityError {
					result.IsValid = false
				}
			}
			result.Issues = append(result.Issues, issues...)
		}
	}
	return result
}
