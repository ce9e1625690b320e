package board

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridsnap/gridsnap/pkg/errors"
)

// NewHandler exposes a Board over the gridsnap REST API:
//
//	GET    /healthz
//	GET    /api/items            all items (?selected=true filters)
//	POST   /api/items            create an image widget
//	PATCH  /api/items/{id}       apply one mutation
//	POST   /api/notify           record a user notification
//
// The same protocol is spoken by Client, so a MemoryBoard behind this
// handler doubles as a local development board.
type handler struct {
	board  Board
	lister interface{ Items() []*Item }
	logger *log.Logger
}

// NewHandler builds the chi router for the given board. If the board also
// implements Items() (as MemoryBoard does), unfiltered item listing is
// served from it; otherwise GET /api/items always applies the selection
// filter.
func NewHandler(b Board, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{board: b, logger: logger}
	if l, ok := b.(interface{ Items() []*Item }); ok {
		h.lister = l
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.listItems)
		r.Post("/items", h.createItem)
		r.Patch("/items/{id}", h.patchItem)
		r.Post("/notify", h.notify)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("selected") == "true" || h.lister == nil {
		items, err := h.board.Selection(r.Context())
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}
	writeJSON(w, http.StatusOK, h.lister.Items())
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req CreateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid create request"))
		return
	}
	it, err := h.board.CreateImage(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *handler) patchItem(w http.ResponseWriter, r *http.Request) {
	var m Mutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		h.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid mutation"))
		return
	}
	m.ID = chi.URLParam(r, "id")
	if err := h.board.Apply(r.Context(), m); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (h *handler) notify(w http.ResponseWriter, r *http.Request) {
	var n Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid notification"))
		return
	}
	h.board.Notify(r.Context(), n.Level, n.Message)
	h.logger.Info("board notification", "level", n.Level, "message", n.Message)
	w.WriteHeader(http.StatusAccepted)
}

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidColumns:
		status = http.StatusBadRequest
	}
	h.logger.Error("request failed", "code", code, "err", err)
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
