package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		provider      string
		raw           map[string]any
		expectedName  string
		expectedEmail string
	}{
		{
			name:     "github_full_profile",
			provider: "github",
			raw: map[string]any{
				"login": "octocat",
				"name":  "The Octocat",
				"email": "octocat@github.com",
			},
			expectedName:  "The Octocat",
			expectedEmail: "octocat@github.com",
		},
		{
			name:     "github_falls_back_to_login",
			provider: "github",
			raw: map[string]any{
				"login": "octocat",
				"email": "octocat@github.com",
			},
			expectedName:  "octocat",
			expectedEmail: "octocat@github.com",
		},
		{
			name:     "azure_null_mail_uses_other_mails",
			provider: "azure",
			raw: map[string]any{
				"mail":        nil,
				"otherMails":  []any{"a@b.com"},
				"displayName": "A",
			},
			expectedName:  "A",
			expectedEmail: "a@b.com",
		},
		{
			name:     "azure_falls_back_to_principal_name",
			provider: "azure",
			raw: map[string]any{
				"otherMails":        []any{},
				"userPrincipalName": "user@tenant.onmicrosoft.com",
				"displayName":       "User",
			},
			expectedName:  "User",
			expectedEmail: "user@tenant.onmicrosoft.com",
		},
		{
			name:     "azure_direct_mail_wins",
			provider: "azure",
			raw: map[string]any{
				"mail":              "direct@corp.com",
				"otherMails":        []any{"other@corp.com"},
				"userPrincipalName": "upn@corp.com",
				"displayName":       "Direct",
			},
			expectedName:  "Direct",
			expectedEmail: "direct@corp.com",
		},
		{
			name:     "google_profile",
			provider: "google",
			raw: map[string]any{
				"name":  "G User",
				"email": "g@gmail.com",
			},
			expectedName:  "G User",
			expectedEmail: "g@gmail.com",
		},
		{
			name:          "empty_profile_degrades_to_sentinels",
			provider:      "github",
			raw:           map[string]any{},
			expectedName:  NoNameFound,
			expectedEmail: NoEmailFound,
		},
		{
			name:          "nil_profile_degrades_to_sentinels",
			provider:      "azure",
			raw:           nil,
			expectedName:  NoNameFound,
			expectedEmail: NoEmailFound,
		},
		{
			name:     "unknown_provider_uses_default_chains",
			provider: "gitlab",
			raw: map[string]any{
				"displayName": "Someone",
				"mail":        "someone@example.com",
			},
			expectedName:  "Someone",
			expectedEmail: "someone@example.com",
		},
		{
			name:     "wrong_field_types_are_skipped",
			provider: "azure",
			raw: map[string]any{
				"mail":        42,
				"otherMails":  "not-a-list",
				"displayName": []any{"nope"},
			},
			expectedName:  NoNameFound,
			expectedEmail: NoEmailFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.provider, tt.raw)

			assert.Equal(t, tt.provider, p.Provider)
			assert.Equal(t, tt.expectedName, p.Name)
			assert.Equal(t, tt.expectedEmail, p.Email)
		})
	}
}

func TestNormalizeKeepsRawPayload(t *testing.T) {
	raw := map[string]any{"login": "octocat", "id": float64(583231)}

	p := Normalize("github", raw)

	assert.Equal(t, raw, p.Raw)
}
