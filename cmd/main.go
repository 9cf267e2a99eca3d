package main

import (
	"context"
	"net/http"
	"os"

	_ "github.com/lib/pq"

	"github.com/adzap-tech/adzap-backend/internal/api"
	"github.com/adzap-tech/adzap-backend/internal/email"
	"github.com/adzap-tech/adzap-backend/internal/service"
	"github.com/adzap-tech/adzap-backend/internal/service/account_service"
	"github.com/adzap-tech/adzap-backend/internal/service/auth_service"
	"github.com/adzap-tech/adzap-backend/internal/service/contact_service"
	"github.com/adzap-tech/adzap-backend/internal/service/sync_service"
	"github.com/adzap-tech/adzap-backend/internal/service/team_service"
	"github.com/adzap-tech/adzap-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var (
	apiConfig *api.Api
)

// initStore picks the storage backend from the environment. A postgres
// or mongo url wins over the default json file store.
func initStore() storage.Store {
	ctx := context.Background()

	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		store, err := storage.NewPostgresStore(ctx, dbURL)
		if err != nil {
			log.Fatalf("cannot connect to postgres: %v", err)
		}
		log.Info("using postgres store")
		return store
	}

	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		dbName := os.Getenv("MONGODB_DATABASE")
		if dbName == "" {
			dbName = "adzap"
		}
		store, err := storage.NewMongoStore(ctx, mongoURI, dbName)
		if err != nil {
			log.Fatalf("cannot connect to mongodb: %v", err)
		}
		log.Info("using mongo store")
		return store
	}

	dataDir := os.Getenv("ADZAP_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := storage.NewFileStore(dataDir)
	if err != nil {
		log.Fatalf("cannot open file store: %v", err)
	}
	log.Infof("using file store at %s", dataDir)
	return store
}

func initApi(store storage.Store) *api.Api {
	log.Info("initializing api config")

	as := &auth_service.AuthService{
		Store:            store,
		MaxAdminAccounts: account_service.MaxAdminAccounts,
		MaxJudgeAccounts: account_service.MaxJudgeAccounts,
	}
	as.Initialize()
	log.Info("auth service created")

	ts := &team_service.TeamService{Store: store}
	log.Info("team service created")

	acs := &account_service.AccountService{Store: store}
	log.Info("account service created")

	cs := &contact_service.ContactService{Store: store}
	log.Info("contact service created")

	ss := &sync_service.SyncService{Store: store}
	log.Info("sync service created")

	return &api.Api{
		Store:                store,
		AuthServiceConfig:    as,
		TeamServiceConfig:    ts,
		AccountServiceConfig: acs,
		ContactServiceConfig: cs,
		SyncServiceConfig:    ss,
	}
}

func setup() {
	godotenv.Load()
	service.InitializeServices()
	store := initStore()
	apiConfig = initApi(store)
	email.StartEmailWorkers(1)
}

func setCors(router *chi.Mux) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   []string{"https://*", "http://*"},
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: true,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

func main() {
	setup()

	// initialize a new router
	router := chi.NewRouter()
	setCors(router)

	// mount the api router
	apiRouter := NewAPIRouter()
	router.Mount("/api", apiRouter)
	log.Info("api router has been mounted")

	// find port for the server to start
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Warnf("port not found in environment. using default port %s", port)
	}

	// find the address to start the server
	apiAddress := os.Getenv("API_URL") + ":" + port

	log.Info("starting server")
	// create a server object to listen to all requests
	srv := http.Server{
		Handler: router,
		Addr:    apiAddress,
	}
	err := srv.ListenAndServe()
	if err != nil {
		log.Fatalf("Server cannot be started. Error: %v", err)
		return
	}
}
