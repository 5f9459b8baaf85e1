package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/services"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileReader serves profile lookups and edits.
type ProfileReader interface {
	GetProfile(ctx context.Context, query string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	Suggested(ctx context.Context, userID primitive.ObjectID) ([]models.User, error)
	Followers(ctx context.Context, id string) ([]models.User, error)
	Following(ctx context.Context, id string) ([]models.User, error)
	UpdateProfile(ctx context.Context, callerID primitive.ObjectID, id string, in services.UpdateProfileInput) (*models.User, error)
}

// ProfileHandler handles profile reads and updates.
type ProfileHandler struct {
	Service ProfileReader
}

// NewProfileHandler creates a new instance of ProfileHandler.
func NewProfileHandler(service ProfileReader) *ProfileHandler {
	return &ProfileHandler{Service: service}
}

func (h *ProfileHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetProfile(r.Context(), mux.Vars(r)["query"])
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *ProfileHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *ProfileHandler) SuggestedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	users, err := h.Service.Suggested(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *ProfileHandler) FollowersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.Followers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *ProfileHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.Following(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateProfileHandler edits the caller's own profile.
func (h *ProfileHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var in services.UpdateProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
