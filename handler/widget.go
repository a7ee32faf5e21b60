package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
)

type WidgetHandler struct {
	tRepo     domain.TestimonialRepository
	prRepo    domain.ProjectRepository
	feedCache domain.FeedCache
	baseURL   string
	router    *mux.Router
}

// cachedFeed is the redis payload: the project's display name plus the full
// approved list, ordered featured-first then newest-first. The featured
// filter and the limit are applied per request after the cache read.
type cachedFeed struct {
	Name         string            `json:"name"`
	Testimonials []domain.FeedItem `json:"testimonials"`
}

type feedProject struct {
	Name string `json:"name"`
}

type feedResponse struct {
	Project      feedProject       `json:"project"`
	Testimonials []domain.FeedItem `json:"testimonials"`
}

func (wh *WidgetHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	limit := 10
	if l := util.GetUrlQueryParam(r, "limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit <= 0 {
			util.WriteError(w, http.StatusBadRequest, "bad limit")
			return
		}
	}
	featured := util.GetUrlQueryParam(r, "featured") == "true"

	feed, err := wh.loadFeed(r, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			util.WriteError(w, http.StatusNotFound, "Project not found")
		} else {
			log.Error().Err(err).Str("slug", slug).Msg("load feed")
			util.WriteInternalServerError(w)
		}
		return
	}

	items := make([]domain.FeedItem, 0)
	for _, item := range feed.Testimonials {
		if featured && !item.IsFeatured {
			continue
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}

	util.WriteJson(w, &feedResponse{
		Project:      feedProject{Name: feed.Name},
		Testimonials: items,
	})
}

func (wh *WidgetHandler) loadFeed(r *http.Request, slug string) (*cachedFeed, error) {
	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	data, err := wh.feedCache.GetBySlug(ctx, slug)
	if err == nil {
		feed := &cachedFeed{}
		if err := json.Unmarshal([]byte(data), feed); err == nil {
			return feed, nil
		}
		log.Warn().Str("slug", slug).Msg("corrupt feed cache entry")
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("feed cache read")
	}

	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	project, err := wh.prRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	ctx, cancel = util.GetContextWithTimeout(r.Context())
	defer cancel()
	items, err := wh.tRepo.GetApprovedByProjectID(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	feed := &cachedFeed{Name: project.Name, Testimonials: items}
	if encoded, err := json.Marshal(feed); err == nil {
		ctx, cancel = util.GetContextWithTimeout(r.Context())
		defer cancel()
		if err := wh.feedCache.Update(ctx, slug, string(encoded)); err != nil {
			log.Warn().Err(err).Msg("feed cache write")
		}
	}
	return feed, nil
}

// GetEmbedScriptHandler emits the self-contained browser script that fetches
// the feed and renders testimonial cards into #testimonial-widget. The slug
// is constrained to [a-z0-9-] by the route, and every user-supplied field is
// escaped by the script before DOM insertion.
func (wh *WidgetHandler) GetEmbedScriptHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	script := strings.NewReplacer(
		"__SLUG__", slug,
		"__BASE_URL__", wh.baseURL,
	).Replace(embedScript)

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(script))
}

const embedScript = `(function() {
  var WIDGET_SLUG = '__SLUG__';
  var API_URL = '__BASE_URL__/api/widget/' + WIDGET_SLUG;

  function esc(s) {
    return String(s == null ? '' : s)
      .replace(/&/g, '&amp;')
      .replace(/</g, '&lt;')
      .replace(/>/g, '&gt;')
      .replace(/"/g, '&quot;')
      .replace(/'/g, '&#39;');
  }

  function loadTestimonials() {
    fetch(API_URL)
      .then(function(response) { return response.json(); })
      .then(renderWidget)
      .catch(function(error) {
        console.error('Failed to load testimonials:', error);
      });
  }

  function renderWidget(data) {
    var container = document.getElementById('testimonial-widget');
    if (!container) return;

    var styles = '' +
      '.tw-container { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }' +
      '.tw-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 1rem; }' +
      '.tw-card { background: #fff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 1.5rem; }' +
      '.tw-content { color: #374151; font-size: 0.95rem; line-height: 1.6; margin-bottom: 1rem; }' +
      '.tw-author { display: flex; align-items: center; gap: 0.75rem; }' +
      '.tw-avatar { width: 40px; height: 40px; border-radius: 50%; background: #6366f1; color: white; display: flex; align-items: center; justify-content: center; font-weight: 600; }' +
      '.tw-name { font-weight: 600; color: #111827; }' +
      '.tw-role { font-size: 0.85rem; color: #6b7280; }' +
      '.tw-stars { color: #fbbf24; margin-bottom: 0.5rem; }';

    var html = '<style>' + styles + '</style>';
    html += '<div class="tw-container"><div class="tw-grid">';

    data.testimonials.forEach(function(t) {
      var initials = t.name.split(' ').map(function(n) { return n[0] || ''; }).join('').toUpperCase();
      var rating = Math.max(0, Math.min(5, t.rating || 5));
      var stars = '★'.repeat(rating) + '☆'.repeat(5 - rating);
      var role = [t.role, t.company].filter(Boolean).join(' at ');

      html += '<div class="tw-card">';
      html += '<div class="tw-stars">' + stars + '</div>';
      html += '<p class="tw-content">"' + esc(t.content) + '"</p>';
      html += '<div class="tw-author">';
      html += '<div class="tw-avatar">' + esc(initials) + '</div>';
      html += '<div>';
      html += '<div class="tw-name">' + esc(t.name) + '</div>';
      if (role) html += '<div class="tw-role">' + esc(role) + '</div>';
      html += '</div></div></div>';
    });

    html += '</div></div>';
    container.innerHTML = html;
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', loadTestimonials);
  } else {
    loadTestimonials();
  }
})();
`

func NewWidgetHandler(
	r *mux.Router,
	tRepo domain.TestimonialRepository,
	prRepo domain.ProjectRepository,
	feedCache domain.FeedCache,
	baseURL string,
) *WidgetHandler {
	wh := &WidgetHandler{
		tRepo:     tRepo,
		prRepo:    prRepo,
		feedCache: feedCache,
		baseURL:   strings.TrimRight(baseURL, "/"),
		router:    r.PathPrefix("/api/widget").Subrouter(),
	}

	// Embeds live on third-party pages; the feed must be readable from
	// any origin.
	wh.router.Use(handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET"}),
	))
	wh.router.HandleFunc("/{slug:[a-z0-9-]+}", wh.GetFeedHandler).Methods("GET")
	wh.router.HandleFunc("/{slug:[a-z0-9-]+}/embed.js", wh.GetEmbedScriptHandler).Methods("GET")
	return wh
}
