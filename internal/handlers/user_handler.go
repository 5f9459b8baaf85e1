package handlers

import (
	"context"
	"net/http"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/Dias221467/Threads_Backend/internal/services"
	jwtutil "github.com/Dias221467/Threads_Backend/pkg/jwt"
	"github.com/Dias221467/Threads_Backend/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountService is the account lifecycle as seen by the HTTP layer.
type AccountService interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	VerifyEmail(ctx context.Context, rawToken, email string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	Freeze(ctx context.Context, userID primitive.ObjectID) error
}

// SessionManager issues and revokes session cookies.
type SessionManager interface {
	Issue(ctx context.Context, w http.ResponseWriter, userID primitive.ObjectID) (string, error)
	Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error)
	Revoke(ctx context.Context, w http.ResponseWriter, claims *jwtutil.Claims) error
}

// UserHandler handles the account lifecycle endpoints.
type UserHandler struct {
	Service  AccountService
	Sessions SessionManager
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service AccountService, sessions SessionManager) *UserHandler {
	return &UserHandler{Service: service, Sessions: sessions}
}

type signupResponse struct {
	Message string `json:"message"`
	models.Profile
}

// SignupHandler registers an unverified account and mails the verification link.
func (h *UserHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.Service.Signup(r.Context(), in)
	if err != nil {
		log.WithError(err).WithField("username", in.Username).Warn("Signup failed")
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Message: "Signup successful! Please check your email for verification.",
		Profile: user.ToProfile(),
	})
}

// LoginHandler starts a session for a verified user.
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &credentials) {
		return
	}

	user, err := h.Service.Login(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		log.WithFields(log.Fields{"username": credentials.Username, "error": err}).Warn("Authentication failed")
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	if _, err := h.Sessions.Issue(r.Context(), w, user.ID); err != nil {
		log.WithError(err).Error("Failed to issue session")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, user.ToProfile())
}

// LogoutHandler ends the current session. It succeeds even without one.
func (h *UserHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var claims *jwtutil.Claims
	if raw := middleware.SessionToken(r); raw != "" {
		claims, _ = h.Sessions.Authenticate(r.Context(), raw)
	}

	if err := h.Sessions.Revoke(r.Context(), w, claims); err != nil {
		log.WithError(err).Warn("Failed to revoke session record")
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User logged out successfully"})
}

// VerifyEmailHandler consumes a verification link and logs the user in.
func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.Service.VerifyEmail(r.Context(), vars["token"], vars["email"])
	if err != nil {
		log.WithError(err).WithField("email", vars["email"]).Warn("Email verification failed")
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	if _, err := h.Sessions.Issue(r.Context(), w, user.ID); err != nil {
		log.WithError(err).Error("Failed to issue session")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, user.ToProfile())
}

// RequestPasswordResetHandler mails a reset link.
func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), body.Email); err != nil {
		writeServiceError(w, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset email sent successfully"})
}

// ResetPasswordHandler sets a new password from a reset link.
func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := h.Service.ResetPassword(r.Context(), mux.Vars(r)["token"], body.NewPassword); err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
}

// FreezeHandler freezes the caller's own account.
func (h *UserHandler) FreezeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Freeze(r.Context(), userID); err != nil {
		writeServiceError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// callerID resolves the authenticated user set by AuthMiddleware.
func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		log.WithField("userID", claims.UserID).Warn("Session carries a malformed user ID")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}
