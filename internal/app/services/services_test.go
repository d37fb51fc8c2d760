package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/app/repositories/memory"
	"github.com/fitalumni/alumni/internal/pkg/auth"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

const testPassword = "secret123"

var (
	hashOnce sync.Once
	testHash string
)

// passwordHash hashes testPassword once per test binary
func passwordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := auth.HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func newMemStorage() *memStorage {
	return &memStorage{files: make(map[string][]byte)}
}

func (s *memStorage) Save(up filestorage.Upload, subDir, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return "", fmt.Errorf("disk full")
	}
	f, err := up.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	path := subDir + "/" + filename
	s.files[path] = data
	return path, nil
}

func (s *memStorage) Delete(relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, relPath)
	return nil
}

func (s *memStorage) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type sentMail struct {
	kind, to, subject string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	last string
}

func (m *recordingMailer) record(kind, to, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, to: to, subject: detail})
	m.last = detail
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(toEmail, _, token string) error {
	return m.record("reset", toEmail, token)
}

func (m *recordingMailer) SendApplicationReceivedEmail(toEmail, _, jobTitle, _ string) error {
	return m.record("received", toEmail, jobTitle)
}

func (m *recordingMailer) SendApplicationStatusEmail(toEmail, _, _, status string) error {
	return m.record("status", toEmail, status)
}

func (m *recordingMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.kind == kind {
			n++
		}
	}
	return n
}

type pushed struct {
	userID    int64
	frameType string
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []pushed
}

func (n *recordingNotifier) SendToUser(userID int64, frameType string, _ interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, pushed{userID, frameType})
	return nil
}

type testEnv struct {
	ctx      context.Context
	db       *memory.DB
	repos    *repositories.Repositories
	storage  *memStorage
	mailer   *recordingMailer
	notifier *recordingNotifier
	activity *ActivityService
	now      time.Time
	logger   zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Now().Truncate(time.Second)
	db := memory.Open()
	db.SetClock(func() time.Time { return now })
	repos := memory.NewRepositories(db)
	logger := zerolog.Nop()

	return &testEnv{
		ctx:      context.Background(),
		db:       db,
		repos:    repos,
		storage:  newMemStorage(),
		mailer:   &recordingMailer{},
		notifier: &recordingNotifier{},
		activity: NewActivityService(repos.Activities, nil, logger),
		now:      now,
		logger:   logger,
	}
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) user(t *testing.T, username string, role models.RoleType) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@fit.edu.vn",
		PasswordHash: passwordHash(t),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, e.repos.Users.Create(e.ctx, u))
	return u
}

func (e *testEnv) activityCount(t *testing.T, action string) int {
	t.Helper()
	entries, _, err := e.repos.Activities.List(e.ctx, models.Page{})
	require.NoError(t, err)
	n := 0
	for _, a := range entries {
		if a.Action == action {
			n++
		}
	}
	return n
}

func image(name string) filestorage.Upload {
	return filestorage.FromBytes(name, []byte("\x89PNG fake"))
}
