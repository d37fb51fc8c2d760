// Package services holds the business rules of the alumni network. Services
// depend on the repository interfaces only, so they run unchanged over the
// Postgres and in-memory implementations.
package services

import (
	"context"
	"strconv"
	"time"

	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

// Clock returns the current time. Tests pin it to a fixed instant.
type Clock func() time.Time

// Notifier pushes a realtime frame to every open connection of a user
type Notifier interface {
	SendToUser(userID int64, frameType string, data interface{}) error
}

// EventPublisher forwards domain events to the message broker
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, event interface{}) error
}

// Storage is the subset of file storage the services need
type Storage interface {
	Save(up filestorage.Upload, subDir, filename string) (string, error)
	Delete(relPath string) error
}

// removeFiles deletes stored files after the owning rows are gone. External
// URLs are skipped and failures never fail the request.
func removeFiles(storage Storage, paths []string) {
	for _, p := range paths {
		if p == "" || filestorage.IsExternalURL(p) {
			continue
		}
		_ = storage.Delete(p)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
