package auth

// userIdentity adapts a User record to the Identity interface.
type userIdentity struct {
	user *User
}

// NewIdentityFromUser wraps a user record as an Identity.
func NewIdentityFromUser(user *User) Identity {
	return userIdentity{user: user}
}

func (i userIdentity) ID() string {
	return i.user.ID.String()
}

func (i userIdentity) Email() string {
	return i.user.Email
}

func (i userIdentity) Name() string {
	return i.user.FullName
}

func (i userIdentity) Role() string {
	return i.user.Role
}

func (i userIdentity) IsEmailVerified() bool {
	return i.user.EmailVerified
}
