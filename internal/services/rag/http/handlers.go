// Package http provides the HTTP transport for the RAG Composer
// (component G).
package http

import (
	stdhttp "net/http"

	"bookmarkhub/internal/modkit/httpkit"
	"bookmarkhub/internal/services/rag/domain"

	"github.com/go-chi/chi/v5"
)

// askInput is the POST /rag body.
type askInput struct {
	Question string `json:"question" validate:"required,min=1"`
}

// Register mounts the rag endpoints on the given router.
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[askInput](r, "/", h.ask)
	r.Get("/{id}", httpkit.Call(h.get))
}

type handlers struct {
	svc domain.ServicePort
}

// @Summary     Ask a question grounded in the caller's bookmarks
// @Tags        RAG
// @Accept      json
// @Produce     json
// @Param       payload body askInput true "Question"
// @Success     200 {object} domain.RagSession
// @Router      /rag [post]
func (h *handlers) ask(r *stdhttp.Request, in askInput) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Ask(r.Context(), userID, in.Question)
}

// @Summary     Fetch a rag session (poll for its answer)
// @Tags        RAG
// @Produce     json
// @Success     200 {object} domain.RagSession
// @Router      /rag/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.GetSession(r.Context(), userID, chi.URLParam(r, "id"))
}
