package dto

import (
	"github.com/eshaffer321/jarbudget-backend/internal/application/service"
	"github.com/eshaffer321/jarbudget-backend/internal/domain/rebalance"
)

// JarResponse is one jar with its derived currency amounts.
type JarResponse struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Percent        float64 `json:"percent"`
	CurrentPercent float64 `json:"current_percent"`
	Amount         float64 `json:"amount"`
	CurrentAmount  float64 `json:"current_amount"`
}

// JarListResponse is the body of a jar listing.
type JarListResponse struct {
	Jars  []JarResponse `json:"jars"`
	Count int           `json:"count"`
}

// RebalanceChangeResponse is one before/after entry of a rebalance.
type RebalanceChangeResponse struct {
	Name       string  `json:"jar_name"`
	OldPercent float64 `json:"old_percent"`
	NewPercent float64 `json:"new_percent"`
}

// RebalanceReportResponse explains what a mutation changed.
type RebalanceReportResponse struct {
	Changes []RebalanceChangeResponse `json:"changes"`
	Summary string                    `json:"summary"`
}

// MutationResponse is the body of a successful create/update/delete.
type MutationResponse struct {
	OperationID string                  `json:"operation_id"`
	Jars        []JarResponse           `json:"jars"`
	Report      RebalanceReportResponse `json:"report"`
	Confidence  float64                 `json:"confidence,omitempty"`
}

// IncomeResponse is the body of the income endpoint.
type IncomeResponse struct {
	Owner       string  `json:"owner"`
	TotalIncome float64 `json:"total_income"`
}

// ToJarResponses converts service views to the wire shape.
func ToJarResponses(views []service.JarView) []JarResponse {
	jars := make([]JarResponse, len(views))
	for i, v := range views {
		jars[i] = JarResponse{
			Name:           v.Name,
			Description:    v.Description,
			Percent:        v.Percent,
			CurrentPercent: v.CurrentPercent,
			Amount:         v.Amount,
			CurrentAmount:  v.CurrentAmount,
		}
	}
	return jars
}

// ToMutationResponse converts a service result to the wire shape.
func ToMutationResponse(result *service.OperationResult) MutationResponse {
	return MutationResponse{
		OperationID: result.OperationID,
		Jars:        ToJarResponses(result.Jars),
		Report:      toReportResponse(result.Report),
		Confidence:  result.Confidence,
	}
}

func toReportResponse(report rebalance.Report) RebalanceReportResponse {
	changes := make([]RebalanceChangeResponse, len(report.Changes))
	for i, c := range report.Changes {
		changes[i] = RebalanceChangeResponse{
			Name:       c.Name,
			OldPercent: c.OldPercent,
			NewPercent: c.NewPercent,
		}
	}
	return RebalanceReportResponse{Changes: changes, Summary: report.Summary}
}
