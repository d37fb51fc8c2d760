package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fitalumni/alumni/internal/app/models"
	"github.com/fitalumni/alumni/internal/app/models/dto"
	"github.com/fitalumni/alumni/internal/app/repositories"
	"github.com/fitalumni/alumni/internal/pkg/apperrors"
	"github.com/fitalumni/alumni/internal/pkg/filestorage"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

// ProfileService manages profiles and their education, experience and skill rows
type ProfileService struct {
	users    repositories.UserRepository
	profiles repositories.ProfileRepository
	storage  Storage
	activity *ActivityService
	loc      *time.Location
	logger   zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repos *repositories.Repositories, storage Storage, activity *ActivityService, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		users:    repos.Users,
		profiles: repos.Profiles,
		storage:  storage,
		activity: activity,
		loc:      time.Local,
		logger:   logger,
	}
}

// Details returns the user with everything shown on their profile page
func (s *ProfileService) Details(ctx context.Context, userID int64) (*models.ProfileDetails, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	educations, err := s.profiles.ListEducations(ctx, userID)
	if err != nil {
		return nil, err
	}
	experiences, err := s.profiles.ListExperiences(ctx, userID)
	if err != nil {
		return nil, err
	}
	skills, err := s.profiles.ListSkills(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ProfileDetails{
		User:        user,
		Profile:     profile,
		Educations:  educations,
		Experiences: experiences,
		Skills:      skills,
		Completion:  profile.Completion(),
	}, nil
}

func (s *ProfileService) dateRange(field, start, end string) (*time.Time, *time.Time, error) {
	startDate, err := helpers.ParseDate(start, s.loc)
	if err != nil {
		return nil, nil, apperrors.NewValidationError(field+".startDate", "dates must use YYYY-MM-DD")
	}
	endDate, err := helpers.ParseDate(end, s.loc)
	if err != nil {
		return nil, nil, apperrors.NewValidationError(field+".endDate", "dates must use YYYY-MM-DD")
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, nil, apperrors.NewValidationError(field+".endDate", "end date is before start date")
	}
	return startDate, endDate, nil
}

func (s *ProfileService) education(userID int64, in dto.EducationInput) (models.Education, error) {
	start, end, err := s.dateRange("education", in.StartDate, in.EndDate)
	if err != nil {
		return models.Education{}, err
	}
	school := strings.TrimSpace(in.School)
	if school == "" {
		return models.Education{}, apperrors.NewValidationError("education.school", "school is required")
	}
	return models.Education{
		UserID:    userID,
		School:    school,
		Major:     strings.TrimSpace(in.Major),
		Degree:    strings.TrimSpace(in.Degree),
		StartDate: start,
		EndDate:   end,
	}, nil
}

func (s *ProfileService) experience(userID int64, in dto.ExperienceInput) (models.Experience, error) {
	start, end, err := s.dateRange("experience", in.StartDate, in.EndDate)
	if err != nil {
		return models.Experience{}, err
	}
	company := strings.TrimSpace(in.Company)
	if company == "" {
		return models.Experience{}, apperrors.NewValidationError("experience.company", "company is required")
	}
	return models.Experience{
		UserID:      userID,
		Position:    strings.TrimSpace(in.Position),
		Company:     company,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// Update upserts the profile. Collections present in the request replace the stored ones.
func (s *ProfileService) Update(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.ProfileDetails, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.Profile{UserID: userID}
	}

	profile.FullName = strings.TrimSpace(req.FullName)
	profile.Bio = req.Bio
	profile.Phone = strings.TrimSpace(req.Phone)
	profile.Address = strings.TrimSpace(req.Address)
	profile.Company = strings.TrimSpace(req.Company)
	profile.Position = strings.TrimSpace(req.Position)
	profile.GraduationYear = req.GraduationYear

	var sets models.ProfileSets
	if req.Educations != nil {
		sets.Educations = make([]models.Education, 0, len(*req.Educations))
		for _, in := range *req.Educations {
			e, err := s.education(userID, in)
			if err != nil {
				return nil, err
			}
			sets.Educations = append(sets.Educations, e)
		}
	}
	if req.Experiences != nil {
		sets.Experiences = make([]models.Experience, 0, len(*req.Experiences))
		for _, in := range *req.Experiences {
			e, err := s.experience(userID, in)
			if err != nil {
				return nil, err
			}
			sets.Experiences = append(sets.Experiences, e)
		}
	}
	if req.Skills != nil {
		sets.Skills = append([]string{}, (*req.Skills)...)
	}

	if err := s.profiles.Save(ctx, profile, sets); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, ActionProfileUpdate, "Updated profile")
	return s.Details(ctx, userID)
}

// AddEducation appends one education row
func (s *ProfileService) AddEducation(ctx context.Context, userID int64, in dto.EducationInput) (*models.Education, error) {
	e, err := s.education(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.AddEducation(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// AddExperience appends one experience row
func (s *ProfileService) AddExperience(ctx context.Context, userID int64, in dto.ExperienceInput) (*models.Experience, error) {
	e, err := s.experience(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.AddExperience(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// AddSkill appends one skill; names are unique per user, ignoring case
func (s *ProfileService) AddSkill(ctx context.Context, userID int64, name string) (*models.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "skill name is required")
	}
	skill := &models.Skill{UserID: userID, Name: name}
	if err := s.profiles.AddSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// DeleteEducation removes one of the caller's education rows
func (s *ProfileService) DeleteEducation(ctx context.Context, userID, id int64) error {
	return s.profiles.DeleteEducation(ctx, userID, id)
}

// DeleteExperience removes one of the caller's experience rows
func (s *ProfileService) DeleteExperience(ctx context.Context, userID, id int64) error {
	return s.profiles.DeleteExperience(ctx, userID, id)
}

// DeleteSkill removes one of the caller's skills
func (s *ProfileService) DeleteSkill(ctx context.Context, userID, id int64) error {
	return s.profiles.DeleteSkill(ctx, userID, id)
}

// UpdateAvatar stores a new avatar and removes the previous file. When the
// database update fails the new file is removed and the old reference is kept.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID int64, up filestorage.Upload) (string, error) {
	if up == nil {
		return "", apperrors.NewValidationError("avatar", "an image file is required")
	}
	ext, err := filestorage.ImagePolicy.Check(up)
	if err != nil {
		return "", err
	}

	path, err := s.storage.Save(up, filestorage.DirAvatars, filestorage.AvatarName(userID, ext))
	if err != nil {
		return "", err
	}

	previous, err := s.profiles.SetAvatar(ctx, userID, path)
	if err != nil {
		_ = s.storage.Delete(path)
		return "", err
	}
	if previous != "" && previous != path {
		removeFiles(s.storage, []string{previous})
	}

	s.activity.Record(ctx, userID, ActionProfileUpdate, "Changed avatar")
	return path, nil
}
