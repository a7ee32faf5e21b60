package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
	"github.com/testimonio/api/util/middleware"
)

type ProjectHandler struct {
	prRepo    domain.ProjectRepository
	tRepo     domain.TestimonialRepository
	userRepo  domain.UserRepository
	feedCache domain.FeedCache
	router    *mux.Router
}

func (pr *ProjectHandler) GetAllProjectsHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	projects, err := pr.prRepo.GetProjectsByUserID(ctx, authUser.ID)
	if err != nil {
		log.Error().Err(err).Msg("list projects")
		util.WriteInternalServerError(w)
		return
	}
	util.WriteJson(w, projects)
}

func (pr *ProjectHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		util.WriteNotFound(w)
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	project, err := pr.prRepo.GetByIDForUser(ctx, id, authUser.ID)
	if err != nil {
		// Not owned and not found are deliberately the same answer.
		if err == pgx.ErrNoRows {
			util.WriteNotFound(w)
		} else {
			log.Error().Err(err).Msg("get project")
			util.WriteInternalServerError(w)
		}
		return
	}

	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	testimonials, err := pr.tRepo.GetByProjectID(ctx, project.ID)
	if err != nil {
		log.Error().Err(err).Msg("list testimonials")
		util.WriteInternalServerError(w)
		return
	}

	util.WriteJson(w, map[string]interface{}{
		"project":      project,
		"testimonials": testimonials,
	})
}

func (pr *ProjectHandler) CreateProjectHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)
	jsonBody := r.Context().Value("json")

	body, ok := jsonBody.(map[string]interface{})
	if !ok {
		util.WriteStatus(w, http.StatusBadRequest)
		return
	}
	name, ok := body["name"].(string)
	if !ok || name == "" {
		util.WriteError(w, http.StatusBadRequest, "Project name is required")
		return
	}
	var website *string
	if ws, ok := body["website"].(string); ok && ws != "" {
		website = &ws
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	user, err := pr.userRepo.GetByID(ctx, authUser.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			util.WriteUnauthorized(w)
		} else {
			log.Error().Err(err).Msg("get user")
			util.WriteInternalServerError(w)
		}
		return
	}

	if user.Plan == domain.PLAN_FREE {
		ctx, cancel = util.GetContextWithTimeout(r.Context())
		defer cancel()
		count, err := pr.prRepo.CountByUserID(ctx, user.ID)
		if err != nil {
			log.Error().Err(err).Msg("count projects")
			util.WriteInternalServerError(w)
			return
		}
		if count >= domain.FREE_PLAN_MAX_PROJECTS {
			util.WriteError(w, http.StatusForbidden, "Free plan limited to 1 project. Upgrade to create more.")
			return
		}
	}

	project := &domain.Project{
		UserID:  user.ID,
		Name:    name,
		Slug:    util.GenerateSlug(name),
		Website: website,
	}
	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	err = pr.prRepo.Insert(ctx, project)
	if err != nil {
		log.Error().Err(err).Msg("insert project")
		util.WriteInternalServerError(w)
		return
	}
	util.WriteJson(w, project)
}

func (pr *ProjectHandler) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		util.WriteNotFound(w)
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	project, err := pr.prRepo.GetByIDForUser(ctx, id, authUser.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			util.WriteNotFound(w)
		} else {
			log.Error().Err(err).Msg("get project")
			util.WriteInternalServerError(w)
		}
		return
	}

	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	err = pr.prRepo.Delete(ctx, project)
	if err != nil {
		log.Error().Err(err).Msg("delete project")
		util.WriteInternalServerError(w)
		return
	}

	// Drop the cached public feed so embeds stop serving a dead project.
	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	if err := pr.feedCache.Invalidate(ctx, project.Slug); err != nil {
		log.Warn().Err(err).Str("slug", project.Slug).Msg("invalidate feed cache")
	}
	util.WriteSuccess(w, "Project deleted.")
}

func NewProjectHandler(
	r *mux.Router,
	authMiddleware mux.MiddlewareFunc,
	prRepo domain.ProjectRepository,
	tRepo domain.TestimonialRepository,
	userRepo domain.UserRepository,
	feedCache domain.FeedCache,
) *ProjectHandler {
	p := &ProjectHandler{
		prRepo:    prRepo,
		tRepo:     tRepo,
		userRepo:  userRepo,
		feedCache: feedCache,
		router:    r.PathPrefix("/api/projects").Subrouter(),
	}

	p.router.Use(authMiddleware)
	p.router.HandleFunc("", p.GetAllProjectsHandler).Methods("GET")
	p.router.HandleFunc("/{id:[0-9]+}", p.GetProjectHandler).Methods("GET")
	p.router.HandleFunc("/{id:[0-9]+}/delete", p.DeleteProjectHandler).Methods("POST")

	subrouter := p.router.NewRoute().Subrouter()
	subrouter.Use(middleware.JsonBodyMiddleware)
	subrouter.HandleFunc("/new", p.CreateProjectHandler).Methods("POST")
	return p
}
