package domain

// IdentitySource tags how a wallet identity was obtained.
type IdentitySource string

const (
	SourceProvider      IdentitySource = "provider"       // real wallet provider
	SourceDemoManual    IdentitySource = "demo_manual"    // user-supplied identifier
	SourceDemoGenerated IdentitySource = "demo_generated" // synthesized identifier
)

// IsDemo reports whether the source is one of the demo fallbacks.
func (s IdentitySource) IsDemo() bool {
	return s == SourceDemoManual || s == SourceDemoGenerated
}

// UserProfile is the denormalized profile the backend returns at login.
// Display-only.
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the authenticated state of the client.
// Token is present iff the session is connected; WalletID is always set
// before a token is requested.
type Session struct {
	Token    string         `json:"-"`
	WalletID string         `json:"wallet_id"`
	IsDemo   bool           `json:"is_demo"`
	Source   IdentitySource `json:"source"`
	User     UserProfile    `json:"user"`
}

// Connected reports whether an identity token has been established.
func (s Session) Connected() bool {
	return s.Token != ""
}
