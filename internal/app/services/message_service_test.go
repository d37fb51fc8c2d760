package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestSendPushesToBothParties(t *testing.T) {
	e := newTestEnv(t)
	svc := NewMessageService(e.repos, e.notifier, e.logger)
	alice := e.user(t, "alice", models.RoleUser)
	bob := e.user(t, "bob", models.RoleUser)

	msg, err := svc.Send(e.ctx, alice.ID, bob.ID, "  Chào bạn!  ")
	require.NoError(t, err)
	assert.Equal(t, "Chào bạn!", msg.Content)
	assert.False(t, msg.IsRead)

	require.Len(t, e.notifier.pushes, 2)
	assert.Equal(t, pushed{bob.ID, FrameMessage}, e.notifier.pushes[0])
	assert.Equal(t, pushed{alice.ID, FrameMessage}, e.notifier.pushes[1])
}

func TestSendRejections(t *testing.T) {
	e := newTestEnv(t)
	svc := NewMessageService(e.repos, nil, e.logger)
	alice := e.user(t, "alice", models.RoleUser)

	_, err := svc.Send(e.ctx, alice.ID, alice.ID, "hi")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	_, err = svc.Send(e.ctx, alice.ID, 999, "hi")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.ErrorIs(t, svc.SendFromSocket(e.ctx, alice.ID, 999, " "), apperrors.ErrValidationFailed)
}

func TestConversationMarksPartnerMessagesRead(t *testing.T) {
	e := newTestEnv(t)
	svc := NewMessageService(e.repos, nil, e.logger)
	alice := e.user(t, "alice", models.RoleUser)
	bob := e.user(t, "bob", models.RoleUser)
	carol := e.user(t, "carol", models.RoleUser)

	for _, text := range []string{"một", "hai"} {
		_, err := svc.Send(e.ctx, alice.ID, bob.ID, text)
		require.NoError(t, err)
	}
	_, err := svc.Send(e.ctx, carol.ID, bob.ID, "ba")
	require.NoError(t, err)
	_, err = svc.Send(e.ctx, bob.ID, alice.ID, "bốn")
	require.NoError(t, err)

	unread, err := svc.UnreadCount(e.ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	convs, err := svc.Conversations(e.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	thread, err := svc.Conversation(e.ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "một", thread[0].Content)
	assert.Equal(t, "bốn", thread[2].Content)

	unread, err = svc.UnreadCount(e.ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// bob's own message stays unread for alice
	unread, err = svc.UnreadCount(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}
