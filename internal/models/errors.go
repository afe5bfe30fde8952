package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrListingNotFound    = errors.New("models: listing not found")
	ErrVisitorNotFound    = errors.New("models: visitor not found")
	ErrTeamNotFound       = errors.New("models: team not found")
	ErrNotTeamOwner       = errors.New("models: user is not the team owner")
	ErrAlreadyInTeam      = errors.New("models: user already belongs to a team")
	ErrInvalidCategory    = errors.New("models: invalid listing category")
	ErrInvalidParty       = errors.New("models: invalid message party")
)
