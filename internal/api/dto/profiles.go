package dto

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL    *string `json:"avatar_url" validate:"omitempty,url,max=500"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" validate:"omitempty,max=100"`
	Country      *string `json:"country" validate:"omitempty,max=100"`
	IsPublic     *bool   `json:"is_public"`
	ShowEmail    *bool   `json:"show_email"`
	ShowLocation *bool   `json:"show_location"`
	ShowPhone    *bool   `json:"show_phone"`

	FirstName        *string `json:"first_name" validate:"omitempty,max=100"`
	LastName         *string `json:"last_name" validate:"omitempty,max=100"`
	Phone            *string `json:"phone" validate:"omitempty,max=30"`
	Availability     *string `json:"availability" validate:"omitempty,oneof=WEEKDAYS WEEKENDS EVENINGS FLEXIBLE"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,max=500"`

	OrganizationName *string  `json:"organization_name" validate:"omitempty,min=1,max=200"`
	OrganizationType *string  `json:"organization_type" validate:"omitempty,oneof=NONPROFIT CHARITY COMMUNITY EDUCATIONAL RELIGIOUS GOVERNMENT OTHER"`
	Categories       []string `json:"categories" validate:"omitempty,max=20,dive,max=100"`
	Mission          *string  `json:"mission" validate:"omitempty,max=5000"`
	Website          *string  `json:"website" validate:"omitempty,url,max=500"`
	EmployeeCount    *int     `json:"employee_count" validate:"omitempty,gte=0"`
	FoundedYear      *int     `json:"founded_year" validate:"omitempty,gte=0"`
}

type SkillRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Proficiency     string `json:"proficiency" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED EXPERT"`
	YearsExperience int    `json:"years_experience" validate:"gte=0,lte=80"`
}

type InterestRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Priority string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}
