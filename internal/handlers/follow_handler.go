package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowToggler flips a follow edge.
type FollowToggler interface {
	FollowUnfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error)
}

// FollowHandler handles the follow graph endpoint.
type FollowHandler struct {
	Service FollowToggler
}

// NewFollowHandler creates a new instance of FollowHandler.
func NewFollowHandler(service FollowToggler) *FollowHandler {
	return &FollowHandler{Service: service}
}

// FollowUnfollowHandler toggles whether the caller follows {id}.
func (h *FollowHandler) FollowUnfollowHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(w, r)
	if !ok {
		return
	}

	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		log.WithField("targetID", mux.Vars(r)["id"]).Warn("Invalid follow target")
		writeError(w, http.StatusBadRequest, "User not found")
		return
	}

	following, err := h.Service.FollowUnfollow(r.Context(), actorID, targetID)
	if err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	msg := "User unfollowed successfully"
	if following {
		msg = "User followed successfully"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
