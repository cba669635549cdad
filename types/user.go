package types

import "time"

// User represents an account managed by the API.
// Users are never physically removed; a deleted user keeps its row with
// IsDeleted set.
type User struct {
	// ID is the store-assigned surrogate key. It is never reused or changed.
	ID int64 `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's optional email address.
	Email *string `json:"email" db:"email"`

	// IsDeleted marks a soft-deleted user.
	IsDeleted bool `json:"is_deleted" db:"is_deleted"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent change to the user.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserView is the public single-user representation returned by the API.
type UserView struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

// View projects u onto its public representation.
func (u User) View() UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// UserInput carries the writable fields of a user. Create requires a
// username; update applies only the fields that are set.
type UserInput struct {
	Username Field[string] `json:"username,omitzero"`
	Email    Field[string] `json:"email,omitzero"`
}

// Apply returns u with the set fields of in written over it. A null email
// clears the address. A null username is rejected by validation before this
// point and is ignored here.
func (in UserInput) Apply(u User) User {
	if username, ok := in.Username.Value(); ok {
		u.Username = username
	}
	if in.Email.IsSet() {
		u.Email = in.Email.Ptr()
	}
	return u
}

// UserFilter narrows a user listing. Nil fields do not filter.
type UserFilter struct {
	Username *string
	Deleted  *bool
}
