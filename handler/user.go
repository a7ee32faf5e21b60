package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
	"github.com/testimonio/api/util/middleware"
)

type UserHandler struct {
	repo   domain.UserRepository
	router *mux.Router
}

func (u *UserHandler) UserProfileHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	user, err := u.repo.GetByID(ctx, authUser.ID)
	if err != nil {
		log.Warn().Err(err).Msg("get profile")
		if err == pgx.ErrNoRows {
			util.WriteUnauthorized(w)
		} else {
			util.WriteInternalServerError(w)
		}
		return
	}
	util.WriteJson(w, user)
}

func NewUserHandler(r *mux.Router, authMiddleware mux.MiddlewareFunc, repo domain.UserRepository) *UserHandler {
	u := &UserHandler{
		repo:   repo,
		router: r.PathPrefix("/api/user").Subrouter(),
	}

	u.router.Use(authMiddleware)
	u.router.HandleFunc("/profile", u.UserProfileHandler).Methods("GET")
	return u
}
