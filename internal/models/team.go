package models

import "time"

// Team is a broker team. Listings may be associated with a team for
// shared visibility between its members.
type Team struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID int       `json:"owner_user_id"`
	Members     []User    `json:"members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type TeamMemberRequest struct {
	Email string `json:"email"`
}
