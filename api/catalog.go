package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/htol/locallibrary/service"
)

// maxFormBytes caps the size of a submitted form.
const maxFormBytes = 1 << 20

type (
	pageOp     func(ctx context.Context) (*service.Result, error)
	byIDOp     func(ctx context.Context, id string) (*service.Result, error)
	submitOp   func(ctx context.Context, values url.Values) (*service.Result, error)
	submitIDOp func(ctx context.Context, id string, values url.Values) (*service.Result, error)
)

func (h *handler) page(op pageOp) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := op(r.Context())
		h.respond(w, r, res, err)
	})
}

// byID serves operations addressed by the {id} path segment. Delete
// submissions use it too: the record to delete is the one in the path,
// whatever the form body says.
func (h *handler) byID(op byIDOp) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, err := op(r.Context(), r.PathValue("id"))
		h.respond(w, r, res, err)
	})
}

func (h *handler) submit(op submitOp) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, ok := h.parseForm(w, r)
		if !ok {
			return
		}
		res, err := op(r.Context(), values)
		h.respond(w, r, res, err)
	})
}

func (h *handler) submitByID(op submitIDOp) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		values, ok := h.parseForm(w, r)
		if !ok {
			return
		}
		res, err := op(r.Context(), r.PathValue("id"), values)
		h.respond(w, r, res, err)
	})
}

func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.respondWithStatus(w, r, http.StatusBadRequest, "Malformed form submission", err)
		return nil, false
	}
	return r.PostForm, true
}

// respond renders the result, follows its redirect, or reports err.
func (h *handler) respond(w http.ResponseWriter, r *http.Request, res *service.Result, err error) {
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if res.Redirect != "" {
		http.Redirect(w, r, res.Redirect, http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, res.View, res.Data)
}
