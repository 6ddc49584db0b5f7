package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicSeasonRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons/active", handler.GetActiveSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/weeks/{week}/matches", handler.ListWeekMatches)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/ranking", handler.GetSeasonRanking)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/weeks/{week}/summary", handler.GetWeekSummary)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedEntryRoutes(mux, handler, verifier)
	registerAuthorizedAdminRoutes(mux, handler, verifier)
}

func registerAuthorizedEntryRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/registrations", RequireAuth(verifier, http.HandlerFunc(handler.RegisterEntry)))
	mux.Handle("GET /v1/entries/{entryID}/picks", RequireAuth(verifier, http.HandlerFunc(handler.ListEntryPicks)))
	mux.Handle("GET /v1/entries/{entryID}/used-teams", RequireAuth(verifier, http.HandlerFunc(handler.ListUsedTeams)))
	mux.Handle("PUT /v1/entries/{entryID}/weeks/{week}/pick", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWeeklyPick)))
}

func registerAuthorizedAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/internal/ingestion/results", RequireAuth(verifier, http.HandlerFunc(handler.IngestResults)))
	mux.Handle("POST /v1/internal/sync/schedule", RequireAuth(verifier, http.HandlerFunc(handler.RunScheduleSync)))
	mux.Handle("PUT /v1/internal/seasons/{seasonID}/current-week", RequireAuth(verifier, http.HandlerFunc(handler.SetCurrentWeek)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/resolve-match", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResolveMatchJob)))
	mux.Handle("POST /v1/internal/jobs/resolve-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResolveWeekJob)))
}
