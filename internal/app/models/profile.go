package models

import "time"

// Profile is the 1:1 extension of a user, created lazily on first edit
type Profile struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"userId" db:"user_id"`
	FullName       string    `json:"fullName" db:"full_name" example:"Nguyen Van A"`
	Bio            string    `json:"bio" db:"bio"`
	Phone          string    `json:"phone" db:"phone" example:"0901234567"`
	Address        string    `json:"address" db:"address" example:"Hà Nội"`
	Company        string    `json:"company" db:"company" example:"FPT Software"`
	Position       string    `json:"position" db:"position" example:"Backend Engineer"`
	GraduationYear *int      `json:"graduationYear,omitempty" db:"graduation_year" example:"2020"`
	Avatar         string    `json:"avatar,omitempty" db:"avatar" example:"avatars/user_1_3f2a.png"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Completion returns the share (0-100) of the eight profile fields that are filled
func (p *Profile) Completion() int {
	if p == nil {
		return 0
	}
	filled := 0
	for _, s := range []string{p.FullName, p.Bio, p.Phone, p.Address, p.Company, p.Position, p.Avatar} {
		if s != "" {
			filled++
		}
	}
	if p.GraduationYear != nil {
		filled++
	}
	return filled * 100 / 8
}

// Education is a school entry on a user's profile
type Education struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	School    string     `json:"school" db:"school" example:"ĐH Mở Hà Nội"`
	Major     string     `json:"major" db:"major" example:"Công nghệ thông tin"`
	Degree    string     `json:"degree" db:"degree" example:"Kỹ sư"`
	StartDate *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

// Experience is a work history entry on a user's profile
type Experience struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"userId" db:"user_id"`
	Position    string     `json:"position" db:"position"`
	Company     string     `json:"company" db:"company"`
	Description string     `json:"description" db:"description"`
	StartDate   *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// Skill is a named skill on a user's profile
type Skill struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name" example:"Go"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProfileSets carries the child collections of a profile edit.
// A nil slice leaves that collection untouched; a non-nil slice (even empty)
// replaces it entirely.
type ProfileSets struct {
	Educations  []Education
	Experiences []Experience
	Skills      []string
}

// ProfileDetails is a user together with everything shown on their profile page
type ProfileDetails struct {
	User        *User        `json:"user"`
	Profile     *Profile     `json:"profile"`
	Educations  []Education  `json:"educations"`
	Experiences []Experience `json:"experiences"`
	Skills      []Skill      `json:"skills"`
	Completion  int          `json:"completion" example:"75"`
}
