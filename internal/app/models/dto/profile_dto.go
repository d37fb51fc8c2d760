package dto

import (
	"encoding/json"
	"strings"
)

// EducationInput is one education row of a profile edit
type EducationInput struct {
	School    string `json:"school" binding:"required,max=200" example:"ĐH Mở Hà Nội"`
	Major     string `json:"major" binding:"max=200" example:"Công nghệ thông tin"`
	Degree    string `json:"degree" binding:"max=100" example:"Kỹ sư"`
	StartDate string `json:"startDate" binding:"omitempty,datestr" example:"2016-09-01"`
	EndDate   string `json:"endDate" binding:"omitempty,datestr" example:"2020-06-30"`
}

// ExperienceInput is one experience row of a profile edit
type ExperienceInput struct {
	Position    string `json:"position" binding:"max=200" example:"Backend Engineer"`
	Company     string `json:"company" binding:"required,max=200" example:"FPT Software"`
	Description string `json:"description"`
	StartDate   string `json:"startDate" binding:"omitempty,datestr" example:"2020-07-01"`
	EndDate     string `json:"endDate" binding:"omitempty,datestr"`
}

// SkillInput adds a single skill
type SkillInput struct {
	Name string `json:"name" binding:"required,max=100" example:"Go"`
}

// SkillList accepts either a JSON array of names or one comma-separated string
type SkillList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *SkillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = normalizeSkills(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = normalizeSkills(strings.Split(raw, ","))
	return nil
}

func normalizeSkills(in []string) SkillList {
	out := SkillList{}
	seen := make(map[string]bool, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// UpdateProfileRequest edits the profile. Collections left out of the body are not touched.
type UpdateProfileRequest struct {
	FullName       string             `json:"fullName" binding:"max=100" example:"Nguyen Van A"`
	Bio            string             `json:"bio" binding:"max=2000"`
	Phone          string             `json:"phone" binding:"max=20" example:"0901234567"`
	Address        string             `json:"address" binding:"max=200"`
	Company        string             `json:"company" binding:"max=200"`
	Position       string             `json:"position" binding:"max=200"`
	GraduationYear *int               `json:"graduationYear" binding:"omitempty,min=1950,max=2100" example:"2020"`
	Educations     *[]EducationInput  `json:"educations" binding:"omitempty,dive"`
	Experiences    *[]ExperienceInput `json:"experiences" binding:"omitempty,dive"`
	Skills         *SkillList         `json:"skills" swaggertype:"array,string"`
}

// AvatarResponse returns the stored avatar reference
type AvatarResponse struct {
	Avatar string `json:"avatar" example:"avatars/user_1_3f2a.png"`
	URL    string `json:"url" example:"/uploads/avatars/user_1_3f2a.png"`
}
