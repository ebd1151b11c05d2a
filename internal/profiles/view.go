// Package profiles manages volunteer and organization profiles with their
// skills, interests, follows and activity log.
package profiles

import (
	"github.com/YisakTolla/VolunteerSync-sub001/internal/database/models"
)

// View is a profile as shown to one viewer. Owners see everything; other
// viewers get the fields the profile's show flags allow.
type View struct {
	models.Profile
	Email            string                   `json:"email,omitempty"`
	EmergencyContact string                   `json:"emergency_contact,omitempty"`
	Skills           []models.ProfileSkill    `json:"skills"`
	Interests        []models.ProfileInterest `json:"interests"`
	Owner            bool                     `json:"is_owner"`
}

// redact clears what a non-owner may not see. The detail records are copied
// so the loaded profile is left untouched.
func redact(p models.Profile, email string) View {
	v := View{Profile: p}
	if p.ShowEmail {
		v.Email = email
	}
	if !p.ShowLocation {
		v.City, v.State, v.Country = "", "", ""
	}
	if p.Volunteer != nil {
		details := *p.Volunteer
		if !p.ShowPhone {
			details.Phone = ""
		}
		v.Volunteer = &details
	}
	return v
}
