package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestConnectionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	svc := NewConnectionService(e.repos, e.activity, e.logger)
	alice := e.user(t, "alice", models.RoleAlumni)
	bob := e.user(t, "bob", models.RoleUser)

	req, err := svc.SendRequest(e.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	_, err = svc.SendRequest(e.ctx, alice, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestPending)
	_, err = svc.SendRequest(e.ctx, bob, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrRequestPending)

	incoming, err := svc.Incoming(e.ctx, bob)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice", incoming[0].SenderUsername)

	assert.ErrorIs(t, svc.Accept(e.ctx, alice, req.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, svc.Accept(e.ctx, bob, req.ID))
	assert.Equal(t, 2, e.db.ConnectionCount())

	// answering twice writes nothing
	assert.ErrorIs(t, svc.Accept(e.ctx, bob, req.ID), apperrors.ErrRequestNotPending)
	assert.Equal(t, 2, e.db.ConnectionCount())

	_, err = svc.SendRequest(e.ctx, bob, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyConnected)

	for _, u := range []*models.User{alice, bob} {
		conns, err := svc.Connections(e.ctx, u)
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	}
	assert.Equal(t, 1, e.activityCount(t, ActionConnectionAccept))

	require.NoError(t, svc.Remove(e.ctx, bob, alice.ID))
	assert.Zero(t, e.db.ConnectionCount())
	assert.ErrorIs(t, svc.Remove(e.ctx, bob, alice.ID), apperrors.ErrResourceNotFound)
}

func TestAcceptRollsBackOnFailedWrite(t *testing.T) {
	e := newTestEnv(t)
	svc := NewConnectionService(e.repos, e.activity, e.logger)
	alice := e.user(t, "alice", models.RoleAlumni)
	bob := e.user(t, "bob", models.RoleUser)

	req, err := svc.SendRequest(e.ctx, alice, bob.ID)
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	e.db.FailWrite("connections", 1, diskFull)
	assert.ErrorIs(t, svc.Accept(e.ctx, bob, req.ID), diskFull)

	assert.Zero(t, e.db.ConnectionCount())
	stored, err := e.repos.Connections.GetRequest(e.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stored.Status)
	assert.Zero(t, e.activityCount(t, ActionConnectionAccept))

	require.NoError(t, svc.Accept(e.ctx, bob, req.ID))
	assert.Equal(t, 2, e.db.ConnectionCount())
}

func TestRejectAllowsNewRequest(t *testing.T) {
	e := newTestEnv(t)
	svc := NewConnectionService(e.repos, e.activity, e.logger)
	alice := e.user(t, "alice", models.RoleAlumni)
	bob := e.user(t, "bob", models.RoleUser)

	req, err := svc.SendRequest(e.ctx, alice, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Reject(e.ctx, bob, req.ID))
	assert.Zero(t, e.db.ConnectionCount())

	outgoing, err := svc.Outgoing(e.ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	_, err = svc.SendRequest(e.ctx, bob, alice.ID)
	assert.NoError(t, err)
}

func TestSendRequestRejections(t *testing.T) {
	e := newTestEnv(t)
	svc := NewConnectionService(e.repos, e.activity, e.logger)
	alice := e.user(t, "alice", models.RoleAlumni)

	_, err := svc.SendRequest(e.ctx, alice, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = svc.SendRequest(e.ctx, alice, 424242)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSuggestionsSkipKnownUsers(t *testing.T) {
	e := newTestEnv(t)
	svc := NewConnectionService(e.repos, e.activity, e.logger)
	me := e.user(t, "me", models.RoleAlumni)
	friend := e.user(t, "friend", models.RoleUser)
	pending := e.user(t, "pending", models.RoleUser)
	stranger := e.user(t, "stranger", models.RoleUser)
	inactive := e.user(t, "inactive", models.RoleUser)
	require.NoError(t, e.repos.Users.SetActive(e.ctx, inactive.ID, false))

	req, err := svc.SendRequest(e.ctx, me, friend.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Accept(e.ctx, friend, req.ID))
	_, err = svc.SendRequest(e.ctx, pending, me.ID)
	require.NoError(t, err)

	suggestions, err := svc.Suggestions(e.ctx, me, 0)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, stranger.ID, suggestions[0].ID)
}
