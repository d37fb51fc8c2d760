// Package memory implements the repository interfaces over in-process maps.
// It backs the service and handler tests and mirrors the constraints the
// Postgres schema enforces.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

type likeKey struct {
	postID, userID int64
}

type pairKey struct {
	a, b int64
}

// DB holds every table behind one lock so that cascades and joins stay consistent
type DB struct {
	sync.RWMutex

	seq   int64
	clock func() time.Time

	users         map[int64]*models.User
	sessions      map[string]*models.Session
	resets        map[string]*models.PasswordResetToken
	profiles      map[int64]*models.Profile
	educations    map[int64]*models.Education
	experiences   map[int64]*models.Experience
	skills        map[int64]*models.Skill
	posts         map[int64]*models.Post
	likes         map[likeKey]bool
	comments      map[int64]*models.Comment
	jobs          map[int64]*models.Job
	applications  map[int64]*models.JobApplication
	events        map[int64]*models.Event
	registrations map[int64]*models.EventRegistration
	connections   map[pairKey]*models.Connection
	requests      map[int64]*models.ConnectionRequest
	messages      map[int64]*models.Message
	activities    map[int64]*models.ActivityLog
	settings      *models.SystemSettings

	faults map[string]*fault
}

type fault struct {
	skip int
	err  error
}

// Open creates an empty database
func Open() *DB {
	return &DB{
		clock:         time.Now,
		users:         make(map[int64]*models.User),
		sessions:      make(map[string]*models.Session),
		resets:        make(map[string]*models.PasswordResetToken),
		profiles:      make(map[int64]*models.Profile),
		educations:    make(map[int64]*models.Education),
		experiences:   make(map[int64]*models.Experience),
		skills:        make(map[int64]*models.Skill),
		posts:         make(map[int64]*models.Post),
		likes:         make(map[likeKey]bool),
		comments:      make(map[int64]*models.Comment),
		jobs:          make(map[int64]*models.Job),
		applications:  make(map[int64]*models.JobApplication),
		events:        make(map[int64]*models.Event),
		registrations: make(map[int64]*models.EventRegistration),
		connections:   make(map[pairKey]*models.Connection),
		requests:      make(map[int64]*models.ConnectionRequest),
		messages:      make(map[int64]*models.Message),
		activities:    make(map[int64]*models.ActivityLog),
		faults:        make(map[string]*fault),
	}
}

// SetClock replaces the time source used for created_at and updated_at columns
func (db *DB) SetClock(clock func() time.Time) {
	db.Lock()
	defer db.Unlock()
	db.clock = clock
}

// FailWrite makes the row write to table that follows skip successful ones fail with err.
// Connection accepts consult it for the "connections" table.
func (db *DB) FailWrite(table string, skip int, err error) {
	db.Lock()
	defer db.Unlock()
	db.faults[table] = &fault{skip: skip, err: err}
}

// writeLocked consumes the armed fault for table, if any
func (db *DB) writeLocked(table string) error {
	f, ok := db.faults[table]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(db.faults, table)
	return f.err
}

// NewRepositories wires every repository to db
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:          &userRepository{db},
		Sessions:       &sessionRepository{db},
		PasswordResets: &passwordResetRepository{db},
		Profiles:       &profileRepository{db},
		Posts:          &postRepository{db},
		Jobs:           &jobRepository{db},
		Applications:   &applicationRepository{db},
		Events:         &eventRepository{db},
		Connections:    &connectionRepository{db},
		Messages:       &messageRepository{db},
		Activities:     &activityRepository{db},
		Settings:       &settingsRepository{db},
		Stats:          &statsRepository{db},
	}
}

// nextID must be called with the write lock held
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *DB) now() time.Time {
	return db.clock()
}

func (db *DB) username(id int64) string {
	if u, ok := db.users[id]; ok {
		return u.Username
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// paginate slices items to the requested page; a zero page size returns everything
func paginate[T any](items []T, page models.Page) []T {
	if page.Size <= 0 {
		return items
	}
	start, end := helpers.CalculateSliceIndices(page.Number, page.Size, len(items))
	return items[start:end]
}

// newestFirst orders by created time descending, breaking ties by id
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}
