package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fitalumni/alumni/internal/app/controllers"
	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/middleware"
	"github.com/fitalumni/alumni/internal/pkg/websocket"
)

// APIPrefix is the versioned root of every JSON route
const APIPrefix = "/api/v1"

// Handlers bundles the controllers the router dispatches to
type Handlers struct {
	Auth        *controllers.AuthController
	Profile     *controllers.ProfileController
	Posts       *controllers.PostController
	Jobs        *controllers.JobController
	Events      *controllers.EventController
	Connections *controllers.ConnectionController
	Messages    *controllers.MessageController
	Users       *controllers.UserController
	Admin       *controllers.AdminController
	WebSocket   *websocket.Handler
}

// MaintenanceExempt lists the path prefixes that stay reachable during maintenance
func MaintenanceExempt() []string {
	return []string{
		APIPrefix + "/auth",
		APIPrefix + "/settings",
		controllers.UploadsRoute,
		"/swagger",
	}
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	h *Handlers,
	authMiddleware *middleware.AuthMiddleware,
	settings middleware.MaintenanceChecker,
	uploadDir string,
) {
	router.Static(controllers.UploadsRoute, uploadDir)

	v1 := router.Group(APIPrefix)
	v1.Use(authMiddleware.LoadSession(), middleware.Maintenance(settings, MaintenanceExempt()...))

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/password-reset", h.Auth.RequestPasswordReset)
		auth.POST("/password-reset/confirm", h.Auth.ResetPassword)
	}
	v1.GET("/settings", h.Admin.GetSettings)

	// Confirmed jobs are public; the session is still used to show unconfirmed jobs to their poster
	jobsPublic := v1.Group("/jobs")
	{
		jobsPublic.GET("", h.Jobs.Search)
		jobsPublic.GET("/filters", h.Jobs.Filters)
		jobsPublic.GET("/:id", h.Jobs.Get)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.RequireAuth())

	authenticated.GET("/ws", h.WebSocket.HandleConnection)

	session := authenticated.Group("/auth")
	{
		session.GET("/me", h.Auth.Me)
		session.POST("/logout", h.Auth.Logout)
		session.PUT("/password", h.Auth.ChangePassword)
		session.DELETE("/account", h.Auth.DeleteAccount)
	}

	profile := authenticated.Group("/profile")
	{
		profile.GET("/me", h.Profile.GetMyProfile)
		profile.PUT("", h.Profile.UpdateProfile)
		profile.POST("/avatar", h.Profile.UpdateAvatar)
		profile.POST("/education/add", h.Profile.AddEducation)
		profile.POST("/experience/add", h.Profile.AddExperience)
		profile.POST("/skill/add", h.Profile.AddSkill)
		profile.DELETE("/education/:id", h.Profile.DeleteEducation)
		profile.DELETE("/experience/:id", h.Profile.DeleteExperience)
		profile.DELETE("/skill/:id", h.Profile.DeleteSkill)
	}

	users := authenticated.Group("/users")
	{
		users.GET("/suggestions", h.Connections.Suggestions)
		users.GET("/:id/profile", h.Profile.GetUserProfile)
	}

	posts := authenticated.Group("/posts")
	{
		posts.GET("", h.Posts.Feed)
		posts.POST("", h.Posts.Create)
		posts.GET("/:id", h.Posts.Get)
		posts.PUT("/:id", h.Posts.Update)
		posts.DELETE("/:id", h.Posts.Delete)
		posts.POST("/:id/toggle-publish", h.Posts.TogglePublish)
		posts.POST("/:id/toggle-like", h.Posts.ToggleLike)
		posts.POST("/:id/comments", h.Posts.AddComment)
	}
	authenticated.DELETE("/comments/:id", h.Posts.DeleteComment)

	jobs := authenticated.Group("/jobs")
	{
		jobs.GET("/mine", h.Jobs.ListMine)
		jobs.PUT("/:id", h.Jobs.Update)
		jobs.PATCH("/:id/status", h.Jobs.SetStatus)
		jobs.DELETE("/:id", h.Jobs.Delete)
		jobs.POST("/:id/apply", h.Jobs.Apply)
		jobs.GET("/:id/applications", h.Jobs.ListApplications)

		// Only alumni and admins may post jobs
		posting := jobs.Group("")
		posting.Use(authMiddleware.RequireRoles(models.RoleAlumni, models.RoleAdmin))
		{
			posting.POST("", h.Jobs.Create)
		}
	}
	applications := authenticated.Group("/applications")
	{
		applications.GET("/mine", h.Jobs.MyApplications)
		applications.PUT("/:id/status", h.Jobs.UpdateApplicationStatus)
	}

	events := authenticated.Group("/events")
	{
		events.GET("", h.Events.List)
		events.POST("", h.Events.Create)
		events.GET("/stats/me", h.Events.MyStats)
		events.GET("/:id", h.Events.Get)
		events.PUT("/:id", h.Events.Update)
		events.DELETE("/:id", h.Events.Delete)
		events.POST("/:id/register", h.Events.Register)
		events.DELETE("/:id/register", h.Events.CancelRegistration)
		events.GET("/:id/registrations", h.Events.Registrations)
	}
	authenticated.POST("/registrations/:id/attend", h.Events.MarkAttended)

	connections := authenticated.Group("/connections")
	{
		connections.GET("", h.Connections.List)
		connections.GET("/requests", h.Connections.Incoming)
		connections.GET("/requests/sent", h.Connections.Outgoing)
		connections.POST("/requests", h.Connections.SendRequest)
		connections.POST("/requests/:id/accept", h.Connections.Accept)
		connections.POST("/requests/:id/reject", h.Connections.Reject)
		connections.DELETE("/:userId", h.Connections.Remove)
	}

	messages := authenticated.Group("/messages")
	{
		messages.POST("", h.Messages.Send)
		messages.GET("/conversations", h.Messages.Conversations)
		messages.GET("/unread-count", h.Messages.UnreadCount)
		messages.GET("/:userId", h.Messages.Conversation)
	}

	// --- Admin routes ---
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/analytics", h.Admin.Analytics)
		admin.GET("/activities", h.Admin.Activities)
		admin.PUT("/settings", h.Admin.UpdateSettings)

		admin.GET("/users", h.Users.List)
		admin.PATCH("/users/:id/active", h.Users.ToggleActive)
		admin.PUT("/users/:id/role", h.Users.UpdateRole)
		admin.DELETE("/users/:id", h.Users.Delete)

		admin.GET("/jobs/pending", h.Jobs.ListPending)
		admin.POST("/jobs/:id/confirm", h.Jobs.Confirm)
		admin.DELETE("/jobs/:id", h.Jobs.Delete)

		admin.GET("/events/pending", h.Events.ListPending)
		admin.POST("/events/:id/confirm", h.Events.Confirm)
		admin.DELETE("/events/:id", h.Events.Delete)

		admin.GET("/posts/pending", h.Posts.ListPending)
		admin.GET("/posts/export", h.Posts.Export)
		admin.GET("/posts/export/stats", h.Posts.ExportStats)
		admin.POST("/posts/import", h.Posts.Import)
		admin.POST("/posts/:id/confirm", h.Posts.Confirm)
		admin.DELETE("/posts/:id", h.Posts.Delete)
	}
}
