package routes

import (
	"onboarding-service/config"
	"onboarding-service/handlers"
	"onboarding-service/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(cfg config.Config, onboardingHandler *handlers.OnboardingHandler, adminHandler *handlers.AdminHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	wizard := router.PathPrefix("/onboarding").Subrouter()
	wizard.Use(middleware.AuthMiddleware(cfg), middleware.RequestLogger)
	wizard.Handle("/state", middleware.ErrorHandler(onboardingHandler.StateHandler)).Methods("GET")
	wizard.Handle("/contact", middleware.ErrorHandler(onboardingHandler.ContactFieldsHandler)).Methods("PATCH")
	wizard.Handle("/contact/submit", middleware.ErrorHandler(onboardingHandler.ContactSubmitHandler)).Methods("POST")
	wizard.Handle("/contact/confirm-mismatch", middleware.ErrorHandler(onboardingHandler.ContactConfirmHandler)).Methods("POST")
	wizard.Handle("/contact/fix-mismatch", middleware.ErrorHandler(onboardingHandler.ContactFixHandler)).Methods("POST")
	wizard.Handle("/contact/exit", middleware.ErrorHandler(onboardingHandler.ContactExitHandler)).Methods("POST")
	wizard.Handle("/job-boards", middleware.ErrorHandler(onboardingHandler.JobBoardsFieldsHandler)).Methods("PATCH")
	wizard.Handle("/job-boards/submit", middleware.ErrorHandler(onboardingHandler.JobBoardsSubmitHandler)).Methods("POST")

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequestLogger)
	admin.Handle("/clients", middleware.ErrorHandler(adminHandler.ListClientsHandler)).Methods("GET")
	admin.Handle("/clients/{uid}", middleware.ErrorHandler(adminHandler.GetClientHandler)).Methods("GET")

	return router
}
