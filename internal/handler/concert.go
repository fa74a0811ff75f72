package handler

import (
	"net/http"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/service"
)

// ConcertHandler handles concert HTTP requests
type ConcertHandler struct {
	svc *service.ConcertService
}

// NewConcertHandler creates a new concert handler
func NewConcertHandler(svc *service.ConcertService) *ConcertHandler {
	return &ConcertHandler{svc: svc}
}

// Create handles POST /concerts
func (h *ConcertHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !checkHeaders(w, r) {
		return
	}

	var in model.ConcertInput
	if err := readBody(r, model.ConcertRequiredFields, model.ConcertAllowedFields, &in); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	concert, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, presentConcert(r, concert))
}

// List handles GET /concerts
func (h *ConcertHandler) List(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	limit, offset, apiErr := parsePage(r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	list, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	page := model.ConcertPage{
		Concerts:         make([]*model.Concert, 0, len(list.Items)),
		CollectionLength: list.Total,
		Self:             pageLink(r, concertsPath, limit, offset),
	}
	for _, c := range list.Items {
		page.Concerts = append(page.Concerts, presentConcert(r, c))
	}
	if list.HasMore {
		page.Next = pageLink(r, concertsPath, limit, list.NextOffset)
	}
	WriteJSON(w, http.StatusOK, page)
}

// Get handles GET /concerts/{concert_id}
func (h *ConcertHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("concert_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrConcertNotFound))
		return
	}

	concert, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, presentConcert(r, concert))
}

// Update handles PATCH /concerts/{concert_id}. Changing band moves the
// concert between the bands' lists.
func (h *ConcertHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !checkHeaders(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("concert_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrConcertNotFound))
		return
	}

	var in model.ConcertInput
	if err := readBody(r, nil, model.ConcertAllowedFields, &in); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	concert, err := h.svc.Update(r.Context(), id, &in)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, presentConcert(r, concert))
}

// Delete handles DELETE /concerts/{concert_id}
func (h *ConcertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("concert_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrConcertNotFound))
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
