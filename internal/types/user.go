package types

// User is the stored user record. It never leaves the User Directory as-is; callers outside it
// receive a PublicUser.
type User struct {
	ID           int64  `json:"id"`
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // bcrypt hash, never the raw password
}

// Public strips the credential fields from the record.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, UserName: u.UserName, Email: u.Email}
}

// PublicUser is the only user representation returned across the API boundary.
type PublicUser struct {
	ID       int64  `json:"id" example:"1"`
	UserName string `json:"userName" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	UserName string `json:"userName" validate:"notblank,max=20" example:"alice"`
	Email    string `json:"email" validate:"required,email,max=255" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=5" example:"secret1"`
}
