// Package engine implements the strategy valuation engine: strike selection,
// premium sourcing, per-strategy risk profile calculators, chain validation,
// and the dispatcher that ties them together.
//
// The engine is pure: it performs no I/O, holds no cross-call state, and is
// safe to use from any number of goroutines concurrently.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedStrategy is returned for a strategy type tag the
	// dispatcher does not know.
	ErrUnsupportedStrategy = errors.New("unsupported strategy type")

	// ErrInsufficientStrikes is returned when fewer listed strikes exist
	// than the strategy shape requires.
	ErrInsufficientStrikes = errors.New("insufficient listed strikes for strategy shape")

	// ErrInvalidStrikeOrdering is returned when a protective strike is not
	// strictly further from spot than its short strike.
	ErrInvalidStrikeOrdering = errors.New("protective strike must be further from spot than short strike")

	// ErrNegativeCredit is returned when a credit strategy's selected legs
	// do not produce a positive net credit.
	ErrNegativeCredit = errors.New("strategy requires a positive net credit")

	// ErrInvalidDebit is returned when a debit strategy's selected legs do
	// not produce a positive net debit.
	ErrInvalidDebit = errors.New("strategy requires a positive net debit")
)

// InsufficientMarketDataError reports that the chain needed by the chosen
// strategy failed validation or is missing required strikes/expirations.
type InsufficientMarketDataError struct {
	Symbol     string
	Expiration string
	Issues     []Issue
}

func (e *InsufficientMarketDataError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Message)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("insufficient market data for %s %s", e.Symbol, e.Expiration)
	}
	return fmt.Sprintf("insufficient market data for %s %s: %s",
		e.Symbol, e.Expiration, strings.Join(msgs, "; "))
}
