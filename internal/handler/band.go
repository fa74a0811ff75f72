package handler

import (
	"net/http"

	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/service"
)

// BandHandler handles band HTTP requests
type BandHandler struct {
	svc *service.BandService
}

// NewBandHandler creates a new band handler
func NewBandHandler(svc *service.BandService) *BandHandler {
	return &BandHandler{svc: svc}
}

// Create handles POST /bands
func (h *BandHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !checkHeaders(w, r) {
		return
	}

	var in model.BandInput
	if err := readBody(r, model.BandRequiredFields, model.BandAllowedFields, &in); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	band, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, presentBand(r, band))
}

// List handles GET /bands
func (h *BandHandler) List(w http.ResponseWriter, r *http.Request) {
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

	page := model.BandPage{
		Bands: make([]*model.Band, 0, len(list.Items)),
		Self:  pageLink(r, bandsPath, limit, offset),
	}
	for _, b := range list.Items {
		page.Bands = append(page.Bands, presentBand(r, b))
	}
	if list.HasMore {
		page.Next = pageLink(r, bandsPath, limit, list.NextOffset)
	}
	WriteJSON(w, http.StatusOK, page)
}

// Get handles GET /bands/{band_id}
func (h *BandHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("band_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrBandNotFound))
		return
	}

	band, err := h.svc.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, presentBand(r, band))
}

// Update handles PATCH /bands/{band_id}
func (h *BandHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !checkHeaders(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("band_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrBandNotFound))
		return
	}

	var in model.BandInput
	if err := readBody(r, nil, model.BandAllowedFields, &in); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	if err := model.NewValidationError(in.Validate()); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	band, err := h.svc.Update(r.Context(), id, &in)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, presentBand(r, band))
}

// Delete handles DELETE /bands/{band_id}. The band's concerts are deleted
// with it.
func (h *BandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	id, ok := model.ParseID(r.PathValue("band_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrBandNotFound))
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
