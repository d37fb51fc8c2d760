package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

func TestUpdateProfileReplacesCollections(t *testing.T) {
	e := newTestEnv(t)
	svc := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	user := e.user(t, "thu", models.RoleAlumni)

	year := 2020
	skills := dto.SkillList{"Go", "SQL"}
	details, err := svc.Update(e.ctx, user.ID, &dto.UpdateProfileRequest{
		FullName:       "Nguyen Thi Thu",
		Company:        "FPT",
		GraduationYear: &year,
		Educations:     &[]dto.EducationInput{{School: "ĐH Mở Hà Nội", StartDate: "2016-09-01", EndDate: "2020-06-30"}},
		Skills:         &skills,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Thi Thu", details.Profile.FullName)
	assert.Len(t, details.Educations, 1)
	assert.Len(t, details.Skills, 2)
	assert.Equal(t, 37, details.Completion)

	// collections left out are untouched, an empty one clears
	empty := dto.SkillList{}
	details, err = svc.Update(e.ctx, user.ID, &dto.UpdateProfileRequest{FullName: "Thu", Skills: &empty})
	require.NoError(t, err)
	assert.Len(t, details.Educations, 1)
	assert.Empty(t, details.Skills)
}

func TestProfileDateValidation(t *testing.T) {
	e := newTestEnv(t)
	svc := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	user := e.user(t, "son", models.RoleUser)

	_, err := svc.AddEducation(e.ctx, user.ID, dto.EducationInput{School: "HUST", StartDate: "2020-01-01", EndDate: "2019-01-01"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.AddExperience(e.ctx, user.ID, dto.ExperienceInput{Company: "VNG", StartDate: "01/02/2020"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestProfileItemsAreOwnerScoped(t *testing.T) {
	e := newTestEnv(t)
	svc := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	owner := e.user(t, "owner", models.RoleUser)
	other := e.user(t, "other", models.RoleUser)

	skill, err := svc.AddSkill(e.ctx, owner.ID, "Docker")
	require.NoError(t, err)
	_, err = svc.AddSkill(e.ctx, owner.ID, "docker")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.ErrorIs(t, svc.DeleteSkill(e.ctx, other.ID, skill.ID), apperrors.ErrResourceNotFound)
	assert.NoError(t, svc.DeleteSkill(e.ctx, owner.ID, skill.ID))
}

func TestAddSkillIgnoresCase(t *testing.T) {
	e := newTestEnv(t)
	svc := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	user := e.user(t, "duc", models.RoleUser)

	skills := dto.SkillList{"Go"}
	_, err := svc.Update(e.ctx, user.ID, &dto.UpdateProfileRequest{FullName: "Duc", Skills: &skills})
	require.NoError(t, err)

	_, err = svc.AddSkill(e.ctx, user.ID, "go")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	_, err = svc.AddSkill(e.ctx, user.ID, "  GO ")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	details, err := svc.Details(e.ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, details.Skills, 1)
	assert.Equal(t, "Go", details.Skills[0].Name)
}

func TestUpdateAvatar(t *testing.T) {
	e := newTestEnv(t)
	svc := NewProfileService(e.repos, e.storage, e.activity, e.logger)
	user := e.user(t, "vy", models.RoleUser)

	first, err := svc.UpdateAvatar(e.ctx, user.ID, image("a.png"))
	require.NoError(t, err)
	second, err := svc.UpdateAvatar(e.ctx, user.ID, image("b.jpg"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.False(t, e.storage.has(first))
	assert.True(t, e.storage.has(second))

	_, err = svc.UpdateAvatar(e.ctx, user.ID, image("c.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrFileTypeNotAllowed)

	_, err = svc.UpdateAvatar(e.ctx, 9999, image("d.png"))
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Equal(t, 1, e.storage.count())
}
