package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/flavourbook-go/apperror"
	"github.com/user/flavourbook-go/auth"
	"github.com/user/flavourbook-go/httpx"
)

// Handlers provides HTTP handlers for the flavour and tag resources. Both
// resource trees require the token middleware; the owner is always taken
// from the authenticated user in the request context.
type Handlers struct {
	service *Service
}

// NewHandlers creates new catalog Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterFlavourRoutes registers the /flavours routes on a router that
// already has the token middleware applied. The id pattern admits digits
// only, so non-numeric ids fall through to a plain 404.
func (h *Handlers) RegisterFlavourRoutes(r chi.Router) {
	r.Get("/", h.handleListFlavours)
	r.Post("/", h.handleCreateFlavour)
	r.Get("/{id:[0-9]+}", h.handleGetFlavour)
	r.Put("/{id:[0-9]+}", h.handleUpdateFlavour(false))
	r.Patch("/{id:[0-9]+}", h.handleUpdateFlavour(true))
	r.Delete("/{id:[0-9]+}", h.handleDeleteFlavour)
}

// RegisterTagRoutes registers the /tags routes on a router that already has
// the token middleware applied.
func (h *Handlers) RegisterTagRoutes(r chi.Router) {
	r.Get("/", h.handleListTags)
	r.Post("/", h.handleCreateTag)
	r.Get("/{id:[0-9]+}", h.handleGetTag)
	r.Put("/{id:[0-9]+}", h.handleUpdateTag)
	r.Patch("/{id:[0-9]+}", h.handleUpdateTag)
	r.Delete("/{id:[0-9]+}", h.handleDeleteTag)
}

// caller extracts the authenticated user, writing a 401 when missing.
func caller(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, apperror.NewAuthError("no authenticated user in context", nil))
		return nil, false
	}
	return user, true
}

// pathID parses the {id} route parameter. The route pattern guarantees
// digits, so a parse failure here means an id too large for int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, r, apperror.NewNotFoundError("resource not found", err))
		return 0, false
	}
	return id, true
}

// handleListFlavours godoc
// @Summary List the caller's flavours
// @Description Returns the caller's flavours, most recent first, without descriptions.
// @Tags flavours
// @Produce json
// @Security BearerAuth
// @Success 200 {array} catalog.FlavourSummary
// @Failure 401 {object} apperror.ErrorResponse
// @Router /flavours/ [get]
func (h *Handlers) handleListFlavours(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	flavours, err := h.service.ListFlavours(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	summaries := make([]FlavourSummary, 0, len(flavours))
	for i := range flavours {
		summaries = append(summaries, NewFlavourSummary(&flavours[i]))
	}
	httpx.WriteJSON(w, http.StatusOK, summaries)
}

// handleGetFlavour godoc
// @Summary Get one of the caller's flavours
// @Tags flavours
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flavour id"
// @Success 200 {object} catalog.FlavourDetail
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Router /flavours/{id}/ [get]
func (h *Handlers) handleGetFlavour(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	flavour, err := h.service.GetFlavour(r.Context(), user.ID, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, NewFlavourDetail(flavour))
}

// handleCreateFlavour godoc
// @Summary Create a flavour
// @Description Creates a flavour owned by the caller. Tag references by id must be caller-owned; by name they are created on demand.
// @Tags flavours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body catalog.FlavourRequest true "Flavour fields"
// @Success 201 {object} catalog.FlavourDetail
// @Failure 400 {object} apperror.ErrorResponse "Missing or invalid fields"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /flavours/ [post]
func (h *Handlers) handleCreateFlavour(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req FlavourRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := httpx.ValidateStruct(req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	flavour, err := h.service.CreateFlavour(r.Context(), user.ID, &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, NewFlavourDetail(flavour))
}

// handleUpdateFlavour godoc
// @Summary Update one of the caller's flavours
// @Description PUT requires the mandatory fields; PATCH merges only supplied fields. An absent tags field leaves tags unchanged, an empty array clears them.
// @Tags flavours
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flavour id"
// @Param body body catalog.FlavourRequest true "Flavour fields"
// @Success 200 {object} catalog.FlavourDetail
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Router /flavours/{id}/ [put]
func (h *Handlers) handleUpdateFlavour(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := caller(w, r)
		if !ok {
			return
		}
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req FlavourRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := httpx.ValidateStruct(req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		flavour, err := h.service.UpdateFlavour(r.Context(), user.ID, id, &req, partial)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, NewFlavourDetail(flavour))
	}
}

// handleDeleteFlavour godoc
// @Summary Delete one of the caller's flavours
// @Tags flavours
// @Security BearerAuth
// @Param id path int true "Flavour id"
// @Success 204 "Deleted"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Router /flavours/{id}/ [delete]
func (h *Handlers) handleDeleteFlavour(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteFlavour(r.Context(), user.ID, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}

// handleListTags godoc
// @Summary List the caller's tags
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Success 200 {array} catalog.Tag
// @Failure 401 {object} apperror.ErrorResponse
// @Router /tags/ [get]
func (h *Handlers) handleListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	tags, err := h.service.ListTags(r.Context(), user.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}

// handleGetTag godoc
// @Summary Get one of the caller's tags
// @Tags tags
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag id"
// @Success 200 {object} catalog.Tag
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Router /tags/{id}/ [get]
func (h *Handlers) handleGetTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tag, err := h.service.GetTag(r.Context(), user.ID, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tag)
}

// handleCreateTag godoc
// @Summary Create a tag
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body catalog.TagRequest true "Tag fields"
// @Success 201 {object} catalog.Tag
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Duplicate name for this user"
// @Router /tags/ [post]
func (h *Handlers) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tag, err := h.service.CreateTag(r.Context(), user.ID, &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tag)
}

// handleUpdateTag godoc
// @Summary Rename one of the caller's tags
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tag id"
// @Param body body catalog.TagRequest true "Tag fields"
// @Success 200 {object} catalog.Tag
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Failure 409 {object} apperror.ErrorResponse "Duplicate name for this user"
// @Router /tags/{id}/ [put]
func (h *Handlers) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req TagRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tag, err := h.service.UpdateTag(r.Context(), user.ID, id, &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tag)
}

// handleDeleteTag godoc
// @Summary Delete one of the caller's tags
// @Tags tags
// @Security BearerAuth
// @Param id path int true "Tag id"
// @Success 204 "Deleted"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Absent or owned by another user"
// @Router /tags/{id}/ [delete]
func (h *Handlers) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTag(r.Context(), user.ID, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusNoContent, nil)
}
