package repositories

// Repositories holds all the repository instances
type Repositories struct {
	Users          UserRepository
	Sessions       SessionRepository
	PasswordResets PasswordResetRepository
	Profiles       ProfileRepository
	Posts          PostRepository
	Jobs           JobRepository
	Applications   ApplicationRepository
	Events         EventRepository
	Connections    ConnectionRepository
	Messages       MessageRepository
	Activities     ActivityRepository
	Settings       SettingsRepository
	Stats          StatsRepository
}
