package domain

const (
	RoleAdmin  = "admin"
	RoleLender = "lender"
)

// AdminUsername is the login name of the seeded administrator account.
const AdminUsername = "admin"

// CredentialScheme identifies how a stored secret is verified.
type CredentialScheme int

const (
	// SchemeDigest is a plain, unsalted SHA-256 hex digest. Only the seeded
	// administrator is stored this way.
	SchemeDigest CredentialScheme = iota + 1
	// SchemeSaltedHash is a bcrypt hash. Every lender is stored this way.
	SchemeSaltedHash
)

func (s CredentialScheme) String() string {
	switch s {
	case SchemeDigest:
		return "digest"
	case SchemeSaltedHash:
		return "salted_hash"
	default:
		return "unknown"
	}
}

// SchemeForRole resolves the credential scheme a stored secret must be
// verified with. The mapping is fixed: admin → digest, anything else → bcrypt.
func SchemeForRole(role string) CredentialScheme {
	if role == RoleAdmin {
		return SchemeDigest
	}
	return SchemeSaltedHash
}

// User models an account holder. Secret holds either a hex digest or a bcrypt
// string depending on Scheme().
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Secret   string `json:"-"`
	Role     string `json:"role"`
}

// Scheme reports the credential scheme for this user's stored secret.
func (u *User) Scheme() CredentialScheme {
	return SchemeForRole(u.Role)
}
