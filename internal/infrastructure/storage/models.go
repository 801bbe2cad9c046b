package storage

import "time"

// JarRecord is the persisted form of a jar. Position preserves the
// caller-visible ordering of the snapshot across replaces.
type JarRecord struct {
	Owner          string    `json:"owner"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Percent        float64   `json:"percent"`
	CurrentPercent float64   `json:"current_percent"`
	Position       int       `json:"position"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSettings holds the per-owner scalars shared by all jars.
type UserSettings struct {
	Owner       string    `json:"owner"`
	TotalIncome float64   `json:"total_income"`
	UpdatedAt   time.Time `json:"updated_at"`
}
