package model

import "time"

// User fields accepted on the concert-membership endpoint
var (
	UserConcertsRequiredFields = []string{"concerts"}
	UserConcertsAllowedFields  = []string{"concerts"}
)

// User represents an account created on first login. AuthID is the
// identity provider's subject and the durable key for the account; it is
// also the user_id used in user routes.
type User struct {
	ID        ID     `json:"id"`
	FirstName string `json:"f_name"`
	LastName  string `json:"l_name"`
	AuthID    string `json:"auth_id"`
	Concerts  []Ref  `json:"concerts"`
}

// UserSummary is a user as listed publicly, without concert membership
type UserSummary struct {
	ID        ID     `json:"id"`
	FirstName string `json:"f_name"`
	LastName  string `json:"l_name"`
	AuthID    string `json:"auth_id"`
}

// Summary drops the concerts attribute
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, AuthID: u.AuthID}
}

// UserConcerts is a user's concert membership as returned to its owner
type UserConcerts struct {
	ID       ID     `json:"id"`
	AuthID   string `json:"auth_id"`
	Concerts []Ref  `json:"concerts"`
}

// UserConcertsInput is the body of an add-concerts request
type UserConcertsInput struct {
	Concerts []ID `json:"concerts"`
}

// Identity is the verified identity asserted by an OIDC ID token
type Identity struct {
	Subject   string
	GivenName string
	LastName  string
	Email     string
}

// OAuthState is a pending login. Only a digest of the state value is stored.
type OAuthState struct {
	ID        ID        `json:"id"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is the outcome of a completed login. It is not written to
// clients directly; the callback handler flattens it.
type LoginResult struct {
	User      UserSummary
	IDToken   string
	IsNewUser bool
}
