package helpers

// EnhancedClaims is what the auth middleware stores on the request context:
// the verified token claims plus the profile fields handlers keep reaching
// for (role, display name, avatar). Role comes from the profiles table, not
// the token, so a user promoted to host picks up the new role on their next
// request.
type EnhancedClaims struct {
	*CustomClaims
	Role        string `json:"role"`
	UserID      string `json:"id"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	Fullname    string `json:"fullname,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

// IsHost reports whether the user may create and manage experiences.
func (ec *EnhancedClaims) IsHost() bool {
	return ec.Role == "host"
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

// GetSafeRole defaults to guest when the profile carried no role.
func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return "guest"
	}
	return ec.Role
}
