package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))
	brokerAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("broker"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.GetMe))
	mux.Post("/user/logout", authMiddleware.ThenFunc(app.userHandler.LogOut))

	// Listings: the feed and single-listing views are public, everything
	// else needs a broker account.
	mux.Get("/api/listings/feed", standardMiddleware.ThenFunc(app.listingHandler.GetListingFeed))
	mux.Get("/api/listings/mine", brokerAuthMiddleware.ThenFunc(app.listingHandler.GetMyListings))
	mux.Get("/api/listings/team/:team_id", brokerAuthMiddleware.ThenFunc(app.listingHandler.GetTeamListings))
	mux.Get("/api/listings/:id", standardMiddleware.ThenFunc(app.listingHandler.GetListingByID))
	mux.Post("/api/listings", brokerAuthMiddleware.ThenFunc(app.listingHandler.CreateListing))
	mux.Put("/api/listings/:id", brokerAuthMiddleware.ThenFunc(app.listingHandler.UpdateListing))
	mux.Del("/api/listings/:id", brokerAuthMiddleware.ThenFunc(app.listingHandler.DeleteListing))

	// Public contact form on a listing
	mux.Post("/api/contact", standardMiddleware.ThenFunc(app.visitorHandler.Contact))

	// Messages (stateless access to the store)
	mux.Post("/api/messages", authMiddleware.ThenFunc(app.messageHandler.CreateMessage))
	mux.Get("/api/messages/conversations", authMiddleware.ThenFunc(app.messageHandler.GetConversations))
	mux.Get("/api/messages/thread", authMiddleware.ThenFunc(app.messageHandler.GetThread))
	mux.Post("/api/messages/read", authMiddleware.ThenFunc(app.messageHandler.MarkThreadRead))
	mux.Get("/api/messages/badge", authMiddleware.ThenFunc(app.messageHandler.GetUnreadBadge))

	// Inbox (the mounted, self-refreshing messaging view)
	mux.Get("/api/inbox", authMiddleware.ThenFunc(app.inboxHandler.GetInbox))
	mux.Post("/api/inbox/select", authMiddleware.ThenFunc(app.inboxHandler.SelectThread))
	mux.Post("/api/inbox/send", authMiddleware.ThenFunc(app.inboxHandler.SendMessage))
	mux.Post("/api/inbox/read", authMiddleware.ThenFunc(app.inboxHandler.MarkRead))
	mux.Del("/api/inbox", authMiddleware.ThenFunc(app.inboxHandler.CloseInbox))

	// Teams
	mux.Post("/api/teams", brokerAuthMiddleware.ThenFunc(app.teamHandler.CreateTeam))
	mux.Get("/api/teams/:id", authMiddleware.ThenFunc(app.teamHandler.GetTeamByID))
	mux.Post("/api/teams/:id/members", brokerAuthMiddleware.ThenFunc(app.teamHandler.AddMember))
	mux.Del("/api/teams/:id/members/:member_id", brokerAuthMiddleware.ThenFunc(app.teamHandler.RemoveMember))
	mux.Del("/api/teams/:id", brokerAuthMiddleware.ThenFunc(app.teamHandler.DeleteTeam))

	return standardMiddleware.Then(mux)
}
