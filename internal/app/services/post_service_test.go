package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
)

func newPostService(e *testEnv) *PostService {
	return NewPostService(e.repos, e.storage, e.activity, e.clock, e.logger)
}

func TestCreatePost(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	author := e.user(t, "mai", models.RoleUser)

	t.Run("uploaded image", func(t *testing.T) {
		post, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{Content: "Xin chào"}, image("Ảnh lớp.png"))
		require.NoError(t, err)
		assert.True(t, post.IsPublished)
		assert.False(t, post.IsConfirmed)
		assert.Contains(t, post.ImagePath, "posts/")
		assert.True(t, e.storage.has(post.ImagePath))
	})

	t.Run("url wins over upload", func(t *testing.T) {
		before := e.storage.count()
		post, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{
			Content: "Link", ImageURL: "https://example.com/a.jpg",
		}, image("b.png"))
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a.jpg", post.ImageURL)
		assert.Empty(t, post.ImagePath)
		assert.Equal(t, before, e.storage.count())
	})

	t.Run("content required", func(t *testing.T) {
		_, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{Content: "  "}, nil)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("disallowed image type", func(t *testing.T) {
		_, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{Content: "x"}, image("virus.exe"))
		assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)
	})
}

func TestFeedVisibility(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	alice := e.user(t, "alice", models.RoleUser)
	bob := e.user(t, "bob", models.RoleUser)
	admin := e.user(t, "root", models.RoleAdmin)

	pending, err := svc.Create(e.ctx, alice, &dto.CreatePostRequest{Content: "pending"}, nil)
	require.NoError(t, err)
	confirmed, err := svc.Create(e.ctx, alice, &dto.CreatePostRequest{Content: "confirmed"}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, confirmed.ID))

	own, total, err := svc.Feed(e.ctx, alice, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, own, 2)

	others, total, err := svc.Feed(e.ctx, bob, models.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, confirmed.ID, others[0].ID)

	_, err = svc.Get(e.ctx, bob, pending.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	published, err := svc.TogglePublish(e.ctx, alice, confirmed.ID)
	require.NoError(t, err)
	assert.False(t, published)
	_, err = svc.Get(e.ctx, bob, confirmed.ID)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestToggleLikeIsSelfInverse(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	fan := e.user(t, "fan", models.RoleUser)

	post, err := svc.Create(e.ctx, admin, &dto.CreatePostRequest{Content: "like me"}, nil)
	require.NoError(t, err)

	first, err := svc.ToggleLike(e.ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.EqualValues(t, 1, first.LikesCount)

	second, err := svc.ToggleLike(e.ctx, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.EqualValues(t, 0, second.LikesCount)

	got, err := svc.Get(e.ctx, fan, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Post.LikesCount)
	assert.False(t, got.Post.LikedByMe)
}

func TestDeletePostAuthorization(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	author := e.user(t, "author", models.RoleUser)
	stranger := e.user(t, "stranger", models.RoleAlumni)
	admin := e.user(t, "root", models.RoleAdmin)

	post, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{Content: "mine"}, image("p.png"))
	require.NoError(t, err)
	_, err = svc.AddComment(e.ctx, author, post.ID, "first")
	require.NoError(t, err)

	err = svc.Delete(e.ctx, stranger, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.True(t, e.storage.has(post.ImagePath))
	_, err = e.repos.Posts.GetByID(e.ctx, post.ID, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(e.ctx, admin, post.ID))
	assert.False(t, e.storage.has(post.ImagePath))
	_, err = e.repos.Posts.GetByID(e.ctx, post.ID, 0)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestUpdatePostReplacesImage(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	author := e.user(t, "author", models.RoleUser)

	post, err := svc.Create(e.ctx, author, &dto.CreatePostRequest{Content: "v1"}, image("old.png"))
	require.NoError(t, err)
	oldPath := post.ImagePath

	updated, err := svc.Update(e.ctx, author, post.ID, &dto.UpdatePostRequest{
		Content: "v2", ImageURL: "https://example.com/new.jpg",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)
	assert.Empty(t, updated.ImagePath)
	assert.False(t, e.storage.has(oldPath))
}

func TestDeleteCommentPermissions(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	admin := e.user(t, "root", models.RoleAdmin)
	postAuthor := e.user(t, "owner", models.RoleUser)
	commenter := e.user(t, "commenter", models.RoleUser)
	other := e.user(t, "other", models.RoleUser)

	post, err := svc.Create(e.ctx, postAuthor, &dto.CreatePostRequest{Content: "post"}, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Confirm(e.ctx, admin, post.ID))

	c1, err := svc.AddComment(e.ctx, commenter, post.ID, "one")
	require.NoError(t, err)
	c2, err := svc.AddComment(e.ctx, commenter, post.ID, "two")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteComment(e.ctx, other, c1.ID), apperrors.ErrPermissionDenied)
	assert.NoError(t, svc.DeleteComment(e.ctx, commenter, c1.ID))
	assert.NoError(t, svc.DeleteComment(e.ctx, postAuthor, c2.ID))
	assert.ErrorIs(t, svc.DeleteComment(e.ctx, admin, c2.ID), apperrors.ErrCommentNotFound)
}

func TestImportAndExport(t *testing.T) {
	e := newTestEnv(t)
	svc := newPostService(e)
	admin := e.user(t, "root", models.RoleAdmin)

	jsonFile := filestorage.FromBytes("posts.json", []byte(`[
		{"title": "A", "content": "alpha"},
		{"title": "B", "content": ""},
		{"title": "C", "content": "gamma", "isPublished": false}
	]`))
	result, err := svc.Import(e.ctx, admin, jsonFile)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Errors, 1)

	csvFile := filestorage.FromBytes("posts.csv", []byte("title,content,is_published\nD,delta,true\n"))
	result, err = svc.Import(e.ctx, admin, csvFile)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	_, err = svc.Import(e.ctx, admin, filestorage.FromBytes("posts.xml", []byte("<x/>")))
	assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)

	exported, err := svc.Export(e.ctx)
	require.NoError(t, err)
	assert.Len(t, exported, 3)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportStats(e.ctx, &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, StatsHeader, records[0])
	assert.Equal(t, "root", records[1][2])
}
