package dto

import (
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"required,max=100"`
	UserType string `json:"user_type" validate:"required,oneof=VOLUNTEER ORGANIZATION"`

	OrganizationName string `json:"organization_name,omitempty" validate:"required_if=UserType ORGANIZATION,max=200"`
	OrganizationType string `json:"organization_type,omitempty" validate:"omitempty,oneof=NONPROFIT CHARITY COMMUNITY EDUCATIONAL RELIGIOUS GOVERNMENT OTHER"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	UserType  string `json:"user_type"`
	ProfileID string `json:"profile_id,omitempty"`
}

func NewUserDTO(u *models.User) UserDTO {
	out := UserDTO{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		UserType: string(u.UserType),
	}
	if u.Profile != nil {
		out.ProfileID = u.Profile.ID.String()
	}
	return out
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password,nefield=CurrentPassword"`
}
