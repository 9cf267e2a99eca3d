package main

import (
	"github.com/go-chi/chi/v5"

	"github.com/adzap-tech/adzap-backend/middleware"
)

func NewAPIRouter() *chi.Mux {
	r := chi.NewRouter()

	// configure all endpoints
	r.Get("/health", apiConfig.HandlerHealth)
	r.Get("/bootstrap", apiConfig.HandlerBootstrap)

	// auth layer
	r.Post("/auth/participant/login", apiConfig.HandlerParticipantLogin)
	r.Post("/auth/admin/login", apiConfig.HandlerAdminLogin)
	r.Post("/auth/judge/login", apiConfig.HandlerJudgeLogin)
	r.Post("/auth/logout", apiConfig.HandlerLogout)
	r.Get("/me", middleware.JWTMiddleware(apiConfig.HandlerGetMe))

	// registration layer
	r.Post("/teams/register", apiConfig.HandlerRegisterTeam)
	r.Post("/auth/admin/register", apiConfig.HandlerAdminRegister)
	r.Post("/auth/judge/register", apiConfig.HandlerJudgeRegister)

	// teams layer
	// bulk replace, the client pushes its whole cached list
	r.Put("/teams", apiConfig.HandlerReplaceTeams)
	r.Delete("/teams", middleware.JWTMiddleware(apiConfig.HandlerDeleteTeams))
	r.Put("/teams/{teamID}/product-name", middleware.JWTMiddleware(apiConfig.HandlerUpdateProductName))
	r.Put("/teams/{teamID}/poster", middleware.JWTMiddleware(apiConfig.HandlerUploadPoster))

	// scoring layer
	r.Post("/teams/{teamID}/scores", middleware.JWTMiddleware(apiConfig.HandlerRecordScore))
	r.Delete("/scores", middleware.JWTMiddleware(apiConfig.HandlerClearJudgeScores))
	r.Post("/rounds/{round}/finalize", middleware.JWTMiddleware(apiConfig.HandlerFinalizeRound))
	r.Delete("/rounds/{round}/selection", middleware.JWTMiddleware(apiConfig.HandlerClearRoundSelection))
	r.Get("/results", apiConfig.HandlerResults)

	// contact layer
	r.Post("/contact-messages", apiConfig.HandlerSubmitContactMessage)
	r.Delete("/contact-messages/{messageID}", middleware.JWTMiddleware(apiConfig.HandlerDeleteContactMessage))

	return r
}
