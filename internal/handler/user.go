package handler

import (
	"net/http"

	"github.com/forgo/setlist/api/internal/middleware"
	"github.com/forgo/setlist/api/internal/model"
	"github.com/forgo/setlist/api/internal/service"
)

// UserHandler handles user and concert-membership HTTP requests. The
// {user_id} path value is the user's identity provider subject.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// List handles GET /users. Concert membership is not included.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}

	users, err := h.svc.List(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	WriteJSON(w, http.StatusOK, summaries)
}

// AddConcerts handles POST /users/{user_id}/concerts. The user is looked up
// before the credential is checked, and the body is only read once the
// caller is known to own the user.
func (h *UserHandler) AddConcerts(w http.ResponseWriter, r *http.Request) {
	if !checkHeaders(w, r) {
		return
	}
	ctx := r.Context()
	userID := r.PathValue("user_id")

	user, err := h.svc.Get(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	if err := service.CheckOwnership(middleware.GetIdentity(ctx), userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	var in model.UserConcertsInput
	if err := readBody(r, model.UserConcertsRequiredFields, model.UserConcertsAllowedFields, &in); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	user, err = h.svc.AddConcerts(ctx, user, in.Concerts)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, presentUserConcerts(r, user))
}

// ListConcerts handles GET /users/{user_id}/concerts
func (h *UserHandler) ListConcerts(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	ctx := r.Context()
	userID := r.PathValue("user_id")

	if err := service.CheckOwnership(middleware.GetIdentity(ctx), userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	user, err := h.svc.Get(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, presentUserConcerts(r, user))
}

// RemoveConcert handles DELETE /users/{user_id}/concerts/{concert_id}.
// Removing a concert the user does not have succeeds.
func (h *UserHandler) RemoveConcert(w http.ResponseWriter, r *http.Request) {
	if !checkAccept(w, r) {
		return
	}
	ctx := r.Context()
	userID := r.PathValue("user_id")

	if err := service.CheckOwnership(middleware.GetIdentity(ctx), userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	concertID, ok := model.ParseID(r.PathValue("concert_id"))
	if !ok {
		WriteError(w, MapServiceError(service.ErrConcertNotFound))
		return
	}

	if err := h.svc.RemoveConcert(ctx, userID, concertID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
