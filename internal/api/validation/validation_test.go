package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		uuid  string
		valid bool
	}{
		{"valid_uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"valid_uppercase", "550E8400-E29B-41D4-A716-446655440000", true},
		{"invalid_short", "550e8400-e29b-41d4-a716", false},
		{"invalid_no_dashes", "550e8400e29b41d4a716446655440000", false},
		{"invalid_letters", "ggge8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUUID(tt.uuid), "UUID: %s", tt.uuid)
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		errMsg   string
	}{
		{"valid", "volunteer42", true, ""},
		{"too_short", "abc1", false, "at least 8 characters"},
		{"too_long", strings.Repeat("a1", 40), false, "at most 72 characters"},
		{"no_letter", "1234567890", false, "letter"},
		{"no_number", "onlyletters", false, "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := IsValidPassword(tt.password)
			assert.Equal(t, tt.valid, valid)
			if !valid {
				assert.Contains(t, msg, tt.errMsg)
			}
		})
	}
}

type signup struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,password"`
	Kind     string   `json:"user_type" validate:"required,oneof=VOLUNTEER ORGANIZATION"`
	OrgName  string   `json:"organization_name" validate:"required_if=Kind ORGANIZATION"`
	Tags     []string `json:"tags" validate:"max=2,dive,max=5"`
	Hours    float64  `json:"hours" validate:"gte=0,lte=24"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := signup{Email: "a@example.com", Password: "secret123", Kind: "VOLUNTEER"}
		assert.Nil(t, Struct(s))
	})

	t.Run("reports json field names", func(t *testing.T) {
		details := Struct(signup{Kind: "ADMIN", Hours: 30})
		require.NotNil(t, details)
		assert.Equal(t, "is required", details["email"])
		assert.Equal(t, "is required", details["password"])
		assert.Equal(t, "must be one of: VOLUNTEER ORGANIZATION", details["user_type"])
		assert.Equal(t, "must be at most 24", details["hours"])
	})

	t.Run("conditional requirement", func(t *testing.T) {
		details := Struct(signup{Email: "a@example.com", Password: "secret123", Kind: "ORGANIZATION"})
		assert.Equal(t, map[string]string{"organization_name": "is required"}, details)
	})

	t.Run("password strength message", func(t *testing.T) {
		details := Struct(signup{Email: "a@example.com", Password: "lettersonly", Kind: "VOLUNTEER"})
		assert.Equal(t, "Password must contain at least one number", details["password"])
	})

	t.Run("slice limits", func(t *testing.T) {
		details := Struct(signup{Email: "a@example.com", Password: "secret123", Kind: "VOLUNTEER", Tags: []string{"a", "b", "c"}})
		assert.Equal(t, "must have at most 2 items", details["tags"])
	})
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean_text", "Hello World", "Hello World"},
		{"null_bytes", "Hello\x00World", "HelloWorld"},
		{"control_chars", "Hello\x01\x02World", "HelloWorld"},
		{"keep_newlines", "Hello\nWorld", "Hello\nWorld"},
		{"keep_tabs", "Hello\tWorld", "Hello\tWorld"},
		{"mixed", "Hello\x00\x01\nWorld\t!", "Hello\nWorld\t!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Happy to help", CleanText("  <b>Happy</b> to help<script>alert(1)</script>\x00 "))
	assert.Equal(t, "", CleanText("<img src=x onerror=alert(1)>"))
}

func TestCleanRichText(t *testing.T) {
	assert.Equal(t, "<p>Bring <strong>gloves</strong></p>", CleanRichText(`<p onclick="x()">Bring <strong>gloves</strong></p><script>alert(1)</script>`))
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"shorter_than_max", "Hello", 10, "Hello"},
		{"equal_to_max", "Hello", 5, "Hello"},
		{"longer_than_max", "Hello World", 5, "Hello"},
		{"multibyte", "héllo wörld", 7, "héllo w"},
		{"empty", "", 10, ""},
		{"zero_max", "Hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateString(tt.input, tt.maxLen))
		})
	}
}
