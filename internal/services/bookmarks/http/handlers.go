// Package http provides the HTTP transport for the bookmarks and tags
// boundary endpoints (§6 of the expanded spec). Auth is assumed to already
// have stamped user_id on the request context; this package does not
// authenticate requests.
package http

import (
	"context"
	stdhttp "net/http"

	"bookmarkhub/internal/modkit/httpkit"
	"bookmarkhub/internal/services/bookmarks/domain"
	svc "bookmarkhub/internal/services/bookmarks/service"
	taskdomain "bookmarkhub/internal/services/taskqueue/domain"

	"github.com/go-chi/chi/v5"
)

// EnqueuePort is the cross-module seam bookmarks' POST handler uses to kick
// off ingestion without importing the task queue's service package.
type EnqueuePort interface {
	Enqueue(ctx context.Context, userID, url string, tags []string) (taskdomain.Task, error)
}

// Register mounts bookmark and tag endpoints on the given router.
func Register(r httpkit.Router, s svc.Service, enq EnqueuePort) {
	h := &handlers{svc: s, enq: enq}
	httpkit.PostJSON[createInput](r, "/", h.create)
	r.Get("/", httpkit.Call(h.list))
	r.Get("/tags", httpkit.Call(h.tagCounts))
	r.Get("/tags/{tag}", httpkit.Call(h.byTag))
	r.Get("/{id}", httpkit.Call(h.get))
	r.Delete("/{id}", httpkit.Call(h.delete))
	httpkit.PostJSON[domain.SetTagsInput](r, "/{id}/tags", h.setTags)
	httpkit.PatchJSON[domain.AppendTagsInput](r, "/{id}/tags", h.appendTags)
}

type handlers struct {
	svc svc.Service
	enq EnqueuePort
}

// createInput is the POST /bookmarks body.
type createInput struct {
	URL  string   `json:"url" validate:"required,url"`
	Tags []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=64"`
}

// taskView is the 201 echo the spec requires: url+tags as posted, ingestion
// still pending.
type taskView struct {
	TaskID string   `json:"task_id"`
	URL    string   `json:"url"`
	Tags   []string `json:"tags"`
	Status string   `json:"status"`
}

// @Summary     Enqueue a bookmark for ingestion
// @Tags        Bookmarks
// @Accept      json
// @Produce     json
// @Param       payload body createInput true "URL and optional tags"
// @Success     201 {object} taskView
// @Router      /bookmarks [post]
func (h *handlers) create(r *stdhttp.Request, in createInput) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	task, err := h.enq.Enqueue(r.Context(), userID, in.URL, in.Tags)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(taskView{TaskID: task.TaskID, URL: task.URL, Tags: task.Tags, Status: string(task.Status)}), nil
}

// @Summary     List the caller's bookmarks
// @Tags        Bookmarks
// @Produce     json
// @Success     200 {object} domain.Page
// @Router      /bookmarks [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	paging := domain.Paging{
		Cursor:   r.URL.Query().Get("cursor"),
		PageSize: queryInt(r, "page_size", 0),
	}
	return h.svc.ListBookmarks(r.Context(), userID, paging)
}

// @Summary     Get a single bookmark
// @Tags        Bookmarks
// @Produce     json
// @Success     200 {object} domain.Bookmark
// @Router      /bookmarks/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.GetBookmark(r.Context(), userID, chi.URLParam(r, "id"))
}

// @Summary     Delete a bookmark and its chunks
// @Tags        Bookmarks
// @Success     204
// @Router      /bookmarks/{id} [delete]
func (h *handlers) delete(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.DeleteBookmarkCascade(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// @Summary     Replace a bookmark's tag set
// @Tags        Bookmarks
// @Accept      json
// @Produce     json
// @Param       payload body domain.SetTagsInput true "Tags"
// @Success     200 {object} domain.Bookmark
// @Router      /bookmarks/{id}/tags [post]
func (h *handlers) setTags(r *stdhttp.Request, in domain.SetTagsInput) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.SetTags(r.Context(), userID, chi.URLParam(r, "id"), in.Tags)
}

// @Summary     Append tags to a bookmark's existing set
// @Tags        Bookmarks
// @Accept      json
// @Produce     json
// @Param       payload body domain.AppendTagsInput true "Tags"
// @Success     200 {object} domain.Bookmark
// @Router      /bookmarks/{id}/tags [patch]
func (h *handlers) appendTags(r *stdhttp.Request, in domain.AppendTagsInput) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.AppendTags(r.Context(), userID, chi.URLParam(r, "id"), in.Tags)
}

// @Summary     Tag facet for the caller's bookmarks
// @Tags        Bookmarks
// @Produce     json
// @Success     200 {array} domain.TagCount
// @Router      /bookmarks/tags [get]
func (h *handlers) tagCounts(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.TagCounts(r.Context(), userID)
}

// @Summary     Bookmarks carrying a given tag
// @Tags        Bookmarks
// @Produce     json
// @Success     200 {array} domain.Bookmark
// @Router      /bookmarks/tags/{tag} [get]
func (h *handlers) byTag(r *stdhttp.Request) (any, error) {
	userID, err := httpkit.User(r)
	if err != nil {
		return nil, err
	}
	return h.svc.BookmarksByTag(r.Context(), userID, chi.URLParam(r, "tag"))
}

func queryInt(r *stdhttp.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return def
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}
