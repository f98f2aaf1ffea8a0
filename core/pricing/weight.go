package pricing

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "shipquote/internal/errors"
)

// ParseWeight accepts a positive finite decimal number of kilograms.
// Empty, non-numeric, zero, negative, NaN and infinite inputs are rejected.
func ParseWeight(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero, apperrors.InvalidWeight(raw)
	}

	// ParseFloat admits hex and underscore forms; keep plain decimals only
	w, err := decimal.NewFromString(s)
	if err != nil || !w.IsPositive() {
		return decimal.Zero, apperrors.InvalidWeight(raw)
	}
	return w, nil
}
