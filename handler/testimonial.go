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

type TestimonialHandler struct {
	tRepo     domain.TestimonialRepository
	prRepo    domain.ProjectRepository
	feedCache domain.FeedCache
	router    *mux.Router
}

// SubmitTestimonialHandler accepts an anonymous public submission for the
// project identified by slug. New testimonials always start out pending.
func (t *TestimonialHandler) SubmitTestimonialHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	jsonBody := r.Context().Value("json")

	body, ok := jsonBody.(map[string]interface{})
	if !ok {
		util.WriteStatus(w, http.StatusBadRequest)
		return
	}

	name, _ := body["name"].(string)
	content, _ := body["content"].(string)
	if name == "" || content == "" {
		util.WriteError(w, http.StatusBadRequest, "Name and testimonial content are required")
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	project, plan, err := t.prRepo.GetBySlugWithOwner(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			util.WriteError(w, http.StatusNotFound, "Project not found")
		} else {
			log.Error().Err(err).Msg("get project by slug")
			util.WriteInternalServerError(w)
		}
		return
	}

	// Count-then-insert. Concurrent submissions can transiently exceed
	// the cap; the check is a soft limit, not a guarantee.
	if plan == domain.PLAN_FREE && project.TestimonialCount >= domain.FREE_PLAN_MAX_TESTIMONIALS {
		util.WriteError(w, http.StatusForbidden, "This project has reached its testimonial limit")
		return
	}

	testimonial := &domain.Testimonial{
		ProjectID: project.ID,
		Name:      name,
		Email:     optionalField(body, "email"),
		Company:   optionalField(body, "company"),
		Role:      optionalField(body, "role"),
		Content:   content,
		Rating:    parseRating(body["rating"]),
	}

	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	err = t.tRepo.Insert(ctx, testimonial)
	if err != nil {
		log.Error().Err(err).Msg("insert testimonial")
		util.WriteInternalServerError(w)
		return
	}
	util.WriteSuccess(w, "Thank you! Your testimonial has been submitted.")
}

func (t *TestimonialHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	t.updateStatus(w, r, domain.TESTIMONIAL_STATUS_APPROVED)
}

func (t *TestimonialHandler) RejectHandler(w http.ResponseWriter, r *http.Request) {
	t.updateStatus(w, r, domain.TESTIMONIAL_STATUS_REJECTED)
}

func (t *TestimonialHandler) updateStatus(w http.ResponseWriter, r *http.Request, status string) {
	testimonial, slug, ok := t.ownedTestimonial(w, r)
	if !ok {
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	if err := t.tRepo.UpdateStatus(ctx, testimonial, status); err != nil {
		log.Error().Err(err).Msg("update status")
		util.WriteInternalServerError(w)
		return
	}
	t.invalidateFeed(r, slug)
	util.WriteJson(w, testimonial)
}

func (t *TestimonialHandler) ToggleFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	testimonial, slug, ok := t.ownedTestimonial(w, r)
	if !ok {
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	if err := t.tRepo.SetFeatured(ctx, testimonial, !testimonial.IsFeatured); err != nil {
		log.Error().Err(err).Msg("toggle featured")
		util.WriteInternalServerError(w)
		return
	}
	t.invalidateFeed(r, slug)
	util.WriteJson(w, testimonial)
}

func (t *TestimonialHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	testimonial, slug, ok := t.ownedTestimonial(w, r)
	if !ok {
		return
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	if err := t.tRepo.Delete(ctx, testimonial); err != nil {
		log.Error().Err(err).Msg("delete testimonial")
		util.WriteInternalServerError(w)
		return
	}
	t.invalidateFeed(r, slug)
	util.WriteSuccess(w, "Testimonial deleted.")
}

// ownedTestimonial is the authorization guard for moderation actions. It
// resolves the testimonial through the owning project and the caller's user
// row, answering 404 for both a missing id and somebody else's testimonial.
func (t *TestimonialHandler) ownedTestimonial(w http.ResponseWriter, r *http.Request) (*domain.Testimonial, string, bool) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		util.WriteNotFound(w)
		return nil, "", false
	}

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	testimonial, slug, err := t.tRepo.GetByIDForUser(ctx, id, authUser.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			util.WriteNotFound(w)
		} else {
			log.Error().Err(err).Msg("get testimonial")
			util.WriteInternalServerError(w)
		}
		return nil, "", false
	}
	return testimonial, slug, true
}

func (t *TestimonialHandler) invalidateFeed(r *http.Request, slug string) {
	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	if err := t.feedCache.Invalidate(ctx, slug); err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("invalidate feed cache")
	}
}

func optionalField(body map[string]interface{}, key string) *string {
	if value, ok := body[key].(string); ok && value != "" {
		return &value
	}
	return nil
}

// parseRating accepts a number or a numeric string. Anything unparsable
// falls back to the default; parsable values pass through as submitted.
func parseRating(v interface{}) int {
	switch rating := v.(type) {
	case float64:
		return int(rating)
	case string:
		if n, err := strconv.Atoi(rating); err == nil {
			return n
		}
	}
	return domain.DEFAULT_RATING
}

func NewTestimonialHandler(
	r *mux.Router,
	authMiddleware mux.MiddlewareFunc,
	tRepo domain.TestimonialRepository,
	prRepo domain.ProjectRepository,
	feedCache domain.FeedCache,
) *TestimonialHandler {
	t := &TestimonialHandler{
		tRepo:     tRepo,
		prRepo:    prRepo,
		feedCache: feedCache,
		router:    r,
	}

	publicRouter := t.router.NewRoute().Subrouter()
	publicRouter.Use(middleware.JsonBodyMiddleware)
	publicRouter.HandleFunc("/api/public/testimonial/{slug:[a-z0-9-]+}", t.SubmitTestimonialHandler).Methods("POST")

	authRouter := t.router.PathPrefix("/api/testimonials").Subrouter()
	authRouter.Use(authMiddleware)
	authRouter.HandleFunc("/{id:[0-9]+}/approve", t.ApproveHandler).Methods("POST")
	authRouter.HandleFunc("/{id:[0-9]+}/reject", t.RejectHandler).Methods("POST")
	authRouter.HandleFunc("/{id:[0-9]+}/feature", t.ToggleFeaturedHandler).Methods("POST")
	authRouter.HandleFunc("/{id:[0-9]+}/delete", t.DeleteHandler).Methods("POST")
	return t
}
