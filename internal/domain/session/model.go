package session

import "strings"

// Session is the authenticated identity held client-side after a credential
// passed the allow-list. RawToken keeps the signed token opaque; nothing in
// this package inspects it.
type Session struct {
	Subject    string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	RawToken   string `json:"rawToken,omitempty"`
}

// HasPermission reports whether the session holder may perform the named
// action. Every authenticated admin currently has full permissions.
func (s Session) HasPermission(string) bool {
	return s.Subject != ""
}

// Allowlist is the fixed set of email addresses allowed to hold a session.
// Comparison is case-insensitive; an empty allow-list admits nobody.
type Allowlist map[string]struct{}

func NewAllowlist(emails []string) Allowlist {
	out := make(Allowlist, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		out[email] = struct{}{}
	}
	return out
}

func (a Allowlist) Contains(email string) bool {
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
