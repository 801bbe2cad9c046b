// Package jar defines the budget jar model and the percent/amount
// conversion utilities shared by the rebalancer and the jar service.
//
// A jar holds a fraction of total income. Percent is the budgeted share
// in [0, 1] and always participates in the allocation invariant:
// the percents of all jars sum to AllocationTarget. CurrentPercent is
// the share actually accumulated or spent so far; it may exceed Percent
// (overspending a jar is allowed) and is never rebalanced.
package jar

import (
	"strings"
)

// AllocationTarget is the fixed total that all jar percents must sum to
// whenever at least one jar exists (1.0 == 100% of income).
const AllocationTarget = 1.0

// Tolerance is the slack used when comparing floating-point percent sums
// against AllocationTarget.
const Tolerance = 1e-6

// Jar is a named budget category holding a share of total income.
type Jar struct {
	Name           string
	Description    string
	Percent        float64
	CurrentPercent float64
}

// NormalizeName trims and lowercases a jar name. All uniqueness checks
// and lookups operate on normalized names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AmountFromPercent converts a share of income to an absolute amount.
func AmountFromPercent(percent, totalIncome float64) float64 {
	return percent * totalIncome
}

// PercentFromAmount converts an absolute amount to a share of income.
// Fails with a DivisionByZero error when totalIncome is not positive.
func PercentFromAmount(amount, totalIncome float64) (float64, error) {
	if totalIncome <= 0 {
		return 0, NewDivisionByZero(totalIncome)
	}
	return amount / totalIncome, nil
}

// Amount returns the budgeted currency amount for this jar.
func (j Jar) Amount(totalIncome float64) float64 {
	return AmountFromPercent(j.Percent, totalIncome)
}

// CurrentAmount returns the accumulated currency amount for this jar.
func (j Jar) CurrentAmount(totalIncome float64) float64 {
	return AmountFromPercent(j.CurrentPercent, totalIncome)
}

// SumPercents returns the total budgeted share across jars.
func SumPercents(jars []Jar) float64 {
	var sum float64
	for _, j := range jars {
		sum += j.Percent
	}
	return sum
}
