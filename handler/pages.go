package handler

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
	"github.com/testimonio/api/web"
)

// PagesHandler serves the public server-rendered pages: landing, the
// per-project submission form and the thank-you page.
type PagesHandler struct {
	prRepo    domain.ProjectRepository
	templates *template.Template
	router    *mux.Router
}

func (p *PagesHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "home.html", nil)
}

func (p *PagesHandler) SubmitPageHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	project, err := p.prRepo.GetBySlug(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			p.render(w, http.StatusNotFound, "not_found.html", nil)
		} else {
			log.Error().Err(err).Msg("get project by slug")
			util.WriteInternalServerError(w)
		}
		return
	}

	p.render(w, http.StatusOK, "submit.html", map[string]interface{}{
		"Project": project,
	})
}

func (p *PagesHandler) ThankYouHandler(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "thank_you.html", nil)
}

func (p *PagesHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusNotFound, "not_found.html", nil)
}

func (p *PagesHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render")
	}
}

func NewPagesHandler(r *mux.Router, prRepo domain.ProjectRepository) *PagesHandler {
	p := &PagesHandler{
		prRepo:    prRepo,
		templates: template.Must(template.ParseFS(web.Templates, "templates/*.html")),
		router:    r,
	}

	p.router.HandleFunc("/", p.HomeHandler).Methods("GET")
	p.router.HandleFunc("/c/{slug:[a-z0-9-]+}", p.SubmitPageHandler).Methods("GET")
	p.router.HandleFunc("/thank-you", p.ThankYouHandler).Methods("GET")
	p.router.NotFoundHandler = http.HandlerFunc(p.NotFoundHandler)
	return p
}
