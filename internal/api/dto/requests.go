package dto

import (
	"fmt"

	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
	"github.com/eshaffer321/jarbudget-backend/internal/domain/jar"
)

// CreateJarsRequest is the wire shape of a batch create. It keeps the
// upstream tool-call layout: parallel lists indexed together, with
// percents and amounts mutually exclusive per request. Confidence is the
// upstream parser's score, passed through untouched.
type CreateJarsRequest struct {
	Names        []string  `json:"names"`
	Descriptions []string  `json:"descriptions"`
	Percents     []float64 `json:"percents,omitempty"`
	Amounts      []float64 `json:"amounts,omitempty"`
	Confidence   float64   `json:"confidence"`
}

// ToCreateRequest validates the parallel lists and converts them to the
// service's per-jar shape. Mismatched lengths fail before anything
// reaches the rebalancer.
func (r *CreateJarsRequest) ToCreateRequest() (service.CreateRequest, error) {
	n := len(r.Names)
	if n == 0 {
		return service.CreateRequest{}, jar.NewValidationError("names must not be empty")
	}
	if len(r.Percents) > 0 && len(r.Amounts) > 0 {
		return service.CreateRequest{}, jar.NewValidationError("percents and amounts are mutually exclusive")
	}
	if len(r.Descriptions) != 0 && len(r.Descriptions) != n {
		return service.CreateRequest{}, lengthMismatch("descriptions", len(r.Descriptions), n)
	}
	if len(r.Percents) != 0 && len(r.Percents) != n {
		return service.CreateRequest{}, lengthMismatch("percents", len(r.Percents), n)
	}
	if len(r.Amounts) != 0 && len(r.Amounts) != n {
		return service.CreateRequest{}, lengthMismatch("amounts", len(r.Amounts), n)
	}
	if len(r.Percents) == 0 && len(r.Amounts) == 0 {
		return service.CreateRequest{}, jar.NewValidationError("either percents or amounts is required")
	}

	jars := make([]service.CreateJarRequest, n)
	for i := 0; i < n; i++ {
		req := service.CreateJarRequest{Name: r.Names[i]}
		if len(r.Descriptions) > 0 {
			req.Description = r.Descriptions[i]
		}
		if len(r.Percents) > 0 {
			p := r.Percents[i]
			req.Percent = &p
		} else {
			a := r.Amounts[i]
			req.Amount = &a
		}
		jars[i] = req
	}

	return service.CreateRequest{Jars: jars, Confidence: r.Confidence}, nil
}

// UpdateJarEntry is one jar mutation in a batch update. Null fields are
// left unchanged.
type UpdateJarEntry struct {
	Name           string   `json:"name"`
	NewName        *string  `json:"new_name,omitempty"`
	NewDescription *string  `json:"new_description,omitempty"`
	NewPercent     *float64 `json:"new_percent,omitempty"`
	NewAmount      *float64 `json:"new_amount,omitempty"`
}

// UpdateJarsRequest is the wire shape of a batch update.
type UpdateJarsRequest struct {
	Jars       []UpdateJarEntry `json:"jars"`
	Confidence float64          `json:"confidence"`
}

// ToUpdateRequest converts the wire shape to the service's request.
func (r *UpdateJarsRequest) ToUpdateRequest() (service.UpdateRequest, error) {
	if len(r.Jars) == 0 {
		return service.UpdateRequest{}, jar.NewValidationError("jars must not be empty")
	}
	jars := make([]service.UpdateJarRequest, len(r.Jars))
	for i, e := range r.Jars {
		jars[i] = service.UpdateJarRequest{
			Name:           e.Name,
			NewName:        e.NewName,
			NewDescription: e.NewDescription,
			NewPercent:     e.NewPercent,
			NewAmount:      e.NewAmount,
		}
	}
	return service.UpdateRequest{Jars: jars, Confidence: r.Confidence}, nil
}

// DeleteJarsRequest is the wire shape of a batch delete.
type DeleteJarsRequest struct {
	Names  []string `json:"names"`
	Reason string   `json:"reason"`
}

// SetIncomeRequest sets the owner's total income scalar.
type SetIncomeRequest struct {
	TotalIncome float64 `json:"total_income"`
}

func lengthMismatch(field string, got, want int) *jar.Error {
	return jar.NewValidationError(
		fmt.Sprintf("%s has %d entries, names has %d", field, got, want))
}
