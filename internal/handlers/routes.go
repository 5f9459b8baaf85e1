package handlers

import (
	"net/http"

	"github.com/Dias221467/Threads_Backend/pkg/middleware"
	"github.com/gorilla/mux"
)

// Router groups the handlers mounted by RegisterRoutes.
type Router struct {
	Users     *UserHandler
	Profiles  *ProfileHandler
	Follows   *FollowHandler
	Auth      middleware.Authenticator
	AuthLimit func(http.Handler) http.Handler
}

// RegisterRoutes mounts the account and profile API on r.
func (rt Router) RegisterRoutes(r *mux.Router) {
	limited := func(h http.HandlerFunc) http.Handler {
		if rt.AuthLimit == nil {
			return h
		}
		return rt.AuthLimit(h)
	}

	// Public account lifecycle routes
	r.Handle("/signup", limited(rt.Users.SignupHandler)).Methods("POST")
	r.Handle("/login", limited(rt.Users.LoginHandler)).Methods("POST")
	r.HandleFunc("/logout", rt.Users.LogoutHandler).Methods("POST")
	r.HandleFunc("/verify-email/{token}/{email}", rt.Users.VerifyEmailHandler).Methods("GET")
	r.Handle("/request-password-reset", limited(rt.Users.RequestPasswordResetHandler)).Methods("POST")
	r.Handle("/reset-password/{token}", limited(rt.Users.ResetPasswordHandler)).Methods("POST")
	r.HandleFunc("/profile/{query}", rt.Profiles.GetProfileHandler).Methods("GET")

	// Routes that need a session
	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(rt.Auth))
	protected.HandleFunc("/freeze", rt.Users.FreezeHandler).Methods("PUT")
	protected.HandleFunc("/follow/{id}", rt.Follows.FollowUnfollowHandler).Methods("POST")
	protected.HandleFunc("/allusers", rt.Profiles.ListUsersHandler).Methods("GET")
	protected.HandleFunc("/suggested", rt.Profiles.SuggestedHandler).Methods("GET")
	protected.HandleFunc("/followers/{id}", rt.Profiles.FollowersHandler).Methods("GET")
	protected.HandleFunc("/following/{id}", rt.Profiles.FollowingHandler).Methods("GET")
	protected.HandleFunc("/update/{id}", rt.Profiles.UpdateProfileHandler).Methods("PUT")
}
