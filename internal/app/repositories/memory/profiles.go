package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
)

type profileRepository struct {
	db *DB
}

var _ repositories.ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) Get(_ context.Context, userID int64) (*models.Profile, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if p, ok := r.db.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// upsertLocked returns the stored profile, creating an empty one when missing
func (r *profileRepository) upsertLocked(userID int64) *models.Profile {
	p, ok := r.db.profiles[userID]
	if !ok {
		p = &models.Profile{ID: r.db.nextID(), UserID: userID}
		r.db.profiles[userID] = p
	}
	p.UpdatedAt = r.db.now()
	return p
}

func (r *profileRepository) Save(_ context.Context, profile *models.Profile, sets models.ProfileSets) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[profile.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}

	stored := r.upsertLocked(profile.UserID)
	id, avatar, updated := stored.ID, stored.Avatar, stored.UpdatedAt
	*stored = *profile
	stored.ID, stored.Avatar, stored.UpdatedAt = id, avatar, updated
	*profile = *stored

	if sets.Educations != nil {
		for id, e := range r.db.educations {
			if e.UserID == profile.UserID {
				delete(r.db.educations, id)
			}
		}
		for i := range sets.Educations {
			sets.Educations[i].UserID = profile.UserID
			r.addEducationLocked(&sets.Educations[i])
		}
	}
	if sets.Experiences != nil {
		for id, e := range r.db.experiences {
			if e.UserID == profile.UserID {
				delete(r.db.experiences, id)
			}
		}
		for i := range sets.Experiences {
			sets.Experiences[i].UserID = profile.UserID
			r.addExperienceLocked(&sets.Experiences[i])
		}
	}
	if sets.Skills != nil {
		for id, s := range r.db.skills {
			if s.UserID == profile.UserID {
				delete(r.db.skills, id)
			}
		}
		for _, name := range sets.Skills {
			if r.hasSkillLocked(profile.UserID, name) {
				continue
			}
			r.addSkillLocked(&models.Skill{UserID: profile.UserID, Name: name})
		}
	}
	return nil
}

func (r *profileRepository) SetAvatar(_ context.Context, userID int64, path string) (string, error) {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[userID]; !ok {
		return "", apperrors.ErrUserNotFound
	}
	p := r.upsertLocked(userID)
	previous := p.Avatar
	p.Avatar = path
	return previous, nil
}

// byStartDesc orders by start date descending with undated rows last, then by id descending
func byStartDesc(si, sj *time.Time, idi, idj int64) bool {
	switch {
	case si == nil && sj == nil:
		return idi > idj
	case si == nil:
		return false
	case sj == nil:
		return true
	case !si.Equal(*sj):
		return si.After(*sj)
	}
	return idi > idj
}

func (r *profileRepository) ListEducations(_ context.Context, userID int64) ([]models.Education, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Education{}
	for _, e := range r.db.educations {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byStartDesc(out[i].StartDate, out[j].StartDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *profileRepository) ListExperiences(_ context.Context, userID int64) ([]models.Experience, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Experience{}
	for _, e := range r.db.experiences {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byStartDesc(out[i].StartDate, out[j].StartDate, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *profileRepository) ListSkills(_ context.Context, userID int64) ([]models.Skill, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	out := []models.Skill{}
	for _, s := range r.db.skills {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *profileRepository) addEducationLocked(e *models.Education) {
	e.ID = r.db.nextID()
	e.CreatedAt = r.db.now()
	cp := *e
	r.db.educations[e.ID] = &cp
}

func (r *profileRepository) addExperienceLocked(e *models.Experience) {
	e.ID = r.db.nextID()
	e.CreatedAt = r.db.now()
	cp := *e
	r.db.experiences[e.ID] = &cp
}

func (r *profileRepository) addSkillLocked(s *models.Skill) {
	s.ID = r.db.nextID()
	s.CreatedAt = r.db.now()
	cp := *s
	r.db.skills[s.ID] = &cp
}

func (r *profileRepository) hasSkillLocked(userID int64, name string) bool {
	for _, s := range r.db.skills {
		if s.UserID == userID && strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

func (r *profileRepository) AddEducation(_ context.Context, education *models.Education) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[education.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	r.addEducationLocked(education)
	return nil
}

func (r *profileRepository) AddExperience(_ context.Context, experience *models.Experience) error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, ok := r.db.users[experience.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	r.addExperienceLocked(experience)
	return nil
}

func (r *profileRepository) AddSkill(_ context.Context, skill *models.Skill) error {
	r.db.Lock()
	defer r.db.Unlock()

	if r.hasSkillLocked(skill.UserID, skill.Name) {
		return apperrors.NewConflictError("skill already exists")
	}
	r.addSkillLocked(skill)
	return nil
}

func (r *profileRepository) DeleteEducation(_ context.Context, userID, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if e, ok := r.db.educations[id]; ok && e.UserID == userID {
		delete(r.db.educations, id)
		return nil
	}
	return apperrors.ErrResourceNotFound
}

func (r *profileRepository) DeleteExperience(_ context.Context, userID, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if e, ok := r.db.experiences[id]; ok && e.UserID == userID {
		delete(r.db.experiences, id)
		return nil
	}
	return apperrors.ErrResourceNotFound
}

func (r *profileRepository) DeleteSkill(_ context.Context, userID, id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	if s, ok := r.db.skills[id]; ok && s.UserID == userID {
		delete(r.db.skills, id)
		return nil
	}
	return apperrors.ErrResourceNotFound
}
