package handlers

import (
	"net/http"
	"strconv"

	"imovelBack/internal/models"
)

// userIDFromContext extracts the authenticated user id placed in the
// request context by the JWT middleware.
func userIDFromContext(r *http.Request) (int, bool) {
	userID, ok := r.Context().Value("user_id").(int)
	return userID, ok
}

// counterpartyFromQuery reads the kind/id pair identifying the other
// side of a thread.
func counterpartyFromQuery(r *http.Request) (models.Counterparty, bool) {
	kind := r.URL.Query().Get("kind")
	if kind != models.PartyUser && kind != models.PartyVisitor {
		return models.Counterparty{}, false
	}
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return models.Counterparty{}, false
	}
	return models.Counterparty{Kind: kind, ID: id}, true
}
