package dto

import "github.com/fitalumni/alumni/internal/app/models"

// DashboardResponse is the admin dashboard summary
type DashboardResponse struct {
	Totals           *models.Totals       `json:"totals"`
	RecentActivities []models.ActivityLog `json:"recentActivities"`
}

// AnalyticsResponse is the admin analytics page
type AnalyticsResponse struct {
	Success          bool                  `json:"success" example:"true"`
	Totals           *models.Totals        `json:"totals"`
	RoleDistribution []models.NamedCount   `json:"roleDistribution"`
	UserGrowth       []models.MonthlyCount `json:"userGrowth"`
	SuccessRate      float64               `json:"applicationSuccessRate" example:"37.5"`
	JobsByType       []models.NamedCount   `json:"jobsByType"`
	EventsByType     []models.NamedCount   `json:"eventsByType"`
	TopEmployers     []models.NamedCount   `json:"topEmployers"`
	RecentActivities []models.ActivityLog  `json:"recentActivities"`
}

// UserListRequest is bound from the admin user listing query string
type UserListRequest struct {
	Search string          `form:"search"`
	Role   models.RoleType `form:"role" binding:"omitempty,role"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role models.RoleType `json:"role" binding:"required,role" example:"alumni"`
}

// ActiveResponse reports the new active flag of a user
type ActiveResponse struct {
	IsActive bool `json:"isActive" example:"false"`
}

// SettingsRequest updates the system settings
type SettingsRequest struct {
	SiteName        string `json:"siteName" binding:"required,max=100" example:"Alumni Network"`
	SiteDescription string `json:"siteDescription" binding:"max=2000"`
	MaintenanceMode *bool  `json:"maintenanceMode"`
}
