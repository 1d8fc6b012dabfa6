// Package httpx renders the report endpoints' JSON responses and their
// RFC7807 error payloads.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Problem type tokens for the error taxonomy the report endpoints expose:
// rejected filters, upstream ledger failures, request timeouts, and
// everything else.
const (
	TypeInvalidFilters = "/problemas/filtros-invalidos"
	TypeUpstream       = "/problemas/origem-indisponivel"
	TypeTimeout        = "/problemas/tempo-esgotado"
	TypeInternal       = "/problemas/erro-interno"
)

// ProblemDetail is the RFC7807 body of every non-2xx response.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response carrying one of the
// taxonomy tokens above.
func Problem(w http.ResponseWriter, status int, problemType, title, detail string) {
	JSON(w, status, ProblemDetail{
		Type:   problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
