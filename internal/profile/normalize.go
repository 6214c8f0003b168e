package profile

// getter extracts a candidate value from a raw provider payload,
// returning "" when the field is absent, null, or the wrong shape.
type getter func(raw map[string]any) string

// field reads a plain string field.
func field(key string) getter {
	return func(raw map[string]any) string {
		s, _ := raw[key].(string)
		return s
	}
}

// listFirst reads the first string entry of a list field
// (e.g. Azure's otherMails).
func listFirst(key string) getter {
	return func(raw map[string]any) string {
		list, ok := raw[key].([]any)
		if !ok || len(list) == 0 {
			return ""
		}
		s, _ := list[0].(string)
		return s
	}
}

// rules is the per-provider fallback chain; first non-empty wins.
type rules struct {
	email []getter
	name  []getter
}

var providerRules = map[string]rules{
	"github": {
		email: []getter{field("email")},
		name:  []getter{field("name"), field("login")},
	},
	"azure": {
		email: []getter{field("mail"), listFirst("otherMails"), field("userPrincipalName")},
		name:  []getter{field("displayName")},
	},
	"google": {
		email: []getter{field("email")},
		name:  []getter{field("name")},
	},
}

// defaultRules covers providers without a dedicated rule set by trying
// every field name seen across the known providers.
var defaultRules = rules{
	email: []getter{field("email"), field("mail"), listFirst("otherMails"), field("userPrincipalName")},
	name:  []getter{field("name"), field("displayName")},
}

func first(raw map[string]any, chain []getter, sentinel string) string {
	for _, get := range chain {
		if v := get(raw); v != "" {
			return v
		}
	}
	return sentinel
}

// Normalize maps a raw provider payload into the canonical profile shape.
// Total: missing fields degrade to sentinels rather than erroring.
func Normalize(provider string, raw map[string]any) UserProfile {
	r, ok := providerRules[provider]
	if !ok {
		r = defaultRules
	}

	return UserProfile{
		Provider: provider,
		Name:     first(raw, r.name, NoNameFound),
		Email:    first(raw, r.email, NoEmailFound),
		Raw:      raw,
	}
}
