package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/basho", handler.ListBasho)
	mux.HandleFunc("GET /v1/basho/{bashoID}/banzuke", handler.GetBanzukeBoard)
	mux.HandleFunc("POST /v1/basho/{bashoID}/banzuke/load", handler.LoadBanzuke)
	mux.HandleFunc("GET /v1/basho/{bashoID}/winners", handler.ListBashoWinners)
	mux.HandleFunc("GET /v1/basho/{bashoID}/prizes", handler.ListPrizeWinners)

	mux.HandleFunc("GET /v1/results/preview", handler.PreviewDayResults)

	mux.HandleFunc("POST /v1/drafts/{draftID}/days/{day}/advance", handler.AdvanceDay)
	mux.HandleFunc("GET /v1/drafts/{draftID}/days/{day}/results", handler.GetDayResults)
	mux.HandleFunc("GET /v1/drafts/{draftID}/picks", handler.ListDraftPicks)
}
