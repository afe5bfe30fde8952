package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"imovelBack/internal/config"
	"imovelBack/internal/handlers"
	"imovelBack/internal/repositories"
	services "imovelBack/internal/services"
	"imovelBack/utils"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	signingKey string

	userRepo *repositories.UserRepository

	userHandler    *handlers.UserHandler
	listingHandler *handlers.ListingHandler
	messageHandler *handlers.MessageHandler
	inboxHandler   *handlers.InboxHandler
	visitorHandler *handlers.VisitorHandler
	teamHandler    *handlers.TeamHandler

	inboxManager *services.InboxManager

	db *sql.DB
}

func initializeApp(ctx context.Context, db *sql.DB, rdb *redis.Client, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	listingRepo := repositories.ListingRepository{DB: db}
	messageRepo := repositories.MessageRepository{Db: db}
	visitorRepo := repositories.VisitorRepository{DB: db}
	teamRepo := repositories.TeamRepository{DB: db}
	lastSeenRepo := repositories.LastSeenRepository{Client: rdb}

	tokenManager, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	// Services
	userService := &services.UserService{UserRepo: &userRepo, TokenManager: tokenManager, SigningKey: cfg.JWT.SigningKey}
	listingService := &services.ListingService{ListingRepo: &listingRepo}
	messageService := &services.MessageService{MessageRepo: &messageRepo, LastSeenRepo: &lastSeenRepo}
	visitorService := &services.VisitorService{VisitorRepo: &visitorRepo, ListingRepo: &listingRepo, MessageRepo: &messageRepo}
	teamService := &services.TeamService{TeamRepo: &teamRepo, UserRepo: &userRepo}

	inboxManager := services.NewInboxManager(ctx, &messageRepo, services.DefaultSyncInterval, errorLog)

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	listingHandler := &handlers.ListingHandler{Service: listingService}
	messageHandler := &handlers.MessageHandler{MessageService: messageService}
	inboxHandler := &handlers.InboxHandler{Manager: inboxManager}
	visitorHandler := &handlers.VisitorHandler{Service: visitorService}
	teamHandler := &handlers.TeamHandler{Service: teamService}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		signingKey:     cfg.JWT.SigningKey,
		userRepo:       &userRepo,
		userHandler:    userHandler,
		listingHandler: listingHandler,
		messageHandler: messageHandler,
		inboxHandler:   inboxHandler,
		visitorHandler: visitorHandler,
		teamHandler:    teamHandler,
		inboxManager:   inboxManager,
		db:             db,
	}
}

func openDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
