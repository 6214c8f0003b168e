package profile

// Sentinels used when a provider payload carries no usable value. The
// presentation layer always gets a renderable identity, never a null.
const (
	NoNameFound  = "[no name found]"
	NoEmailFound = "[no email found]"
)

// UserProfile is the canonical profile shape, independent of provider-specific
// field names. Raw keeps the original payload for traceability.
type UserProfile struct {
	Provider string         `json:"provider"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Raw      map[string]any `json:"raw,omitempty"`
}
