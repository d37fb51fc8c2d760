package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleUser   RoleType = "user"
	RoleAlumni RoleType = "alumni"
	RoleAdmin  RoleType = "admin"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	switch r {
	case RoleUser, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// Page is a 1-based page request shared by list queries
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset for the page
func (p Page) Offset() uint64 {
	if p.Number < 1 {
		return 0
	}
	return uint64((p.Number - 1) * p.Size)
}

// Limit returns the page size as an unsigned SQL limit
func (p Page) Limit() uint64 {
	return uint64(p.Size)
}

// MonthlyCount is one bucket of a per-month series
type MonthlyCount struct {
	Month string `json:"month" example:"2026-05"`
	Count int64  `json:"count" example:"12"`
}

// NamedCount is a label with a count, used by analytics breakdowns
type NamedCount struct {
	Name  string `json:"name" example:"Python"`
	Count int64  `json:"count" example:"4"`
}

// Orphans lists uploaded file references left behind by a delete
type Orphans []string

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
