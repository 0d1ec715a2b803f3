package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerBatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/leagues/{league}/batches", handler.IngestBatch)
	mux.HandleFunc("GET /v1/leagues/{league}/batches", handler.QueryBatches)
	mux.HandleFunc("GET /v1/leagues/{league}/batches/{batchID}", handler.GetBatchByID)
}
