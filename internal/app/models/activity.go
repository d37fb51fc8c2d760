package models

import "time"

// ActivityLog is an append-only audit entry
type ActivityLog struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Username    string    `json:"username,omitempty" db:"-"`
	Action      string    `json:"action" db:"action" example:"job.create"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// SystemSettings is the singleton site configuration row
type SystemSettings struct {
	SiteName        string    `json:"siteName" db:"site_name" example:"Alumni Network"`
	SiteDescription string    `json:"siteDescription" db:"site_description"`
	MaintenanceMode bool      `json:"maintenanceMode" db:"maintenance_mode"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// DefaultSiteName is used when the settings row is first created
const DefaultSiteName = "Alumni Network"

// Totals are the headline counters of the admin dashboard
type Totals struct {
	Users         int64 `json:"users"`
	Posts         int64 `json:"posts"`
	Jobs          int64 `json:"jobs"`
	Events        int64 `json:"events"`
	Applications  int64 `json:"applications"`
	PendingJobs   int64 `json:"pendingJobs"`
	PendingEvents int64 `json:"pendingEvents"`
	PendingPosts  int64 `json:"pendingPosts"`
}
