package auth

import (
	"context"
	"crypto/subtle"
)

// FixedCredentials is the local credential check used when no external
// identity provider is configured: one admin username/password pair from
// configuration.
type FixedCredentials struct {
	Username    string
	Password    string
	DisplayName string
}

var _ IdentityProvider = FixedCredentials{}

func (c FixedCredentials) Authenticate(_ context.Context, username, secret string) (Principal, error) {
	// Compare both fields regardless, so timing does not reveal which was wrong.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username))
	passOK := subtle.ConstantTimeCompare([]byte(secret), []byte(c.Password))
	if c.Username == "" || userOK&passOK != 1 {
		return Principal{}, ErrAuthFailure
	}
	name := c.DisplayName
	if name == "" {
		name = c.Username
	}
	return Principal{Username: c.Username, DisplayName: name}, nil
}

func (c FixedCredentials) EndSession(context.Context) error {
	return nil
}
