package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/go-github/github"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
	"github.com/testimonio/api/domain"
	"github.com/testimonio/api/util"
	"github.com/testimonio/api/util/middleware"
	"golang.org/x/oauth2"
)

const (
	githubAuthorizeUrl = "https://github.com/login/oauth/authorize"
	githubTokenUrl     = "https://github.com/login/oauth/access_token"

	SESSION_STORE_KEY = "testimonio-auth"
)

type GithubOAuth2Handler struct {
	store     *sessions.CookieStore
	oauthCfg  *oauth2.Config
	router    *mux.Router
	userRepo  domain.UserRepository
	authCache domain.AuthCache
	apiPath   string
}

func (o *GithubOAuth2Handler) Middleware(h http.Handler) http.Handler {
	return middleware.OAuth2Middleware(o.authCache, h)
}

// fail reports an auth-flow error either as JSON or, when the login came
// from a browser page, as a redirect carrying the message.
func (o *GithubOAuth2Handler) fail(w http.ResponseWriter, r *http.Request, redirectPath string, status int, message string) {
	if redirectPath == "" {
		util.WriteError(w, status, message)
		return
	}
	http.Redirect(
		w,
		r,
		fmt.Sprintf("%s?error=%s", redirectPath, url.QueryEscape(message)),
		http.StatusFound,
	)
}

func (o *GithubOAuth2Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	redirectPath := r.URL.Query().Get("redirect_path")

	b := make([]byte, 16)
	rand.Read(b)

	state := base64.URLEncoding.EncodeToString(b)

	session, _ := o.store.Get(r, SESSION_STORE_KEY)
	session.Values["state"] = state
	if redirectPath != "" {
		u, err := url.Parse(redirectPath)
		if err != nil {
			log.Warn().Err(err).Msg("bad redirect_path")
			util.WriteError(w, http.StatusBadRequest, fmt.Sprintf("bad redirect_path: %s", redirectPath))
			return
		}
		if u.Scheme != "" || u.Host != "" {
			util.WriteError(w, http.StatusBadRequest, fmt.Sprintf("redirect_path must be relative: %s", redirectPath))
			return
		}

		session.Values["redirect_path"] = redirectPath
	} else {
		session.Values["redirect_path"] = ""
	}
	session.Save(r, w)

	http.Redirect(w, r, o.oauthCfg.AuthCodeURL(state), http.StatusFound)
}

func (o *GithubOAuth2Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	session, err := o.store.Get(r, SESSION_STORE_KEY)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, "Aborted")
		return
	}

	redirectPath, _ := session.Values["redirect_path"].(string)

	if r.URL.Query().Get("state") != session.Values["state"] {
		e := "No state match; possible csrf OR cookies not enabled"
		log.Warn().Msg(e)
		o.fail(w, r, redirectPath, http.StatusBadRequest, e)
		return
	}

	token, err := o.oauthCfg.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Warn().Err(err).Msg("token exchange")
		o.fail(w, r, redirectPath, http.StatusBadRequest, "There was an issue getting your token")
		return
	}

	if !token.Valid() {
		o.fail(w, r, redirectPath, http.StatusBadRequest, "Retrieved invalid token")
		return
	}

	client := github.NewClient(o.oauthCfg.Client(r.Context(), token))

	ctx, cancel := util.GetContextWithTimeout(r.Context())
	defer cancel()
	githubUser, _, err := client.Users.Get(ctx, "")

	if err != nil || githubUser == nil || githubUser.ID == nil || githubUser.Email == nil {
		if err != nil {
			log.Warn().Err(err).Msg("github profile")
		}
		e := "Error getting email from github. Please make sure you have set your email as Public email in Github settings."
		o.fail(w, r, redirectPath, http.StatusBadRequest, e)
		return
	}

	// Accounts are created lazily on first sign-in, seeded from the
	// identity-provider profile. The upsert keeps this idempotent.
	ctx, cancel = util.GetContextWithTimeout(context.Background())
	defer cancel()
	user, err := o.userRepo.GetOrCreate(ctx, &domain.User{
		VisitorID: strconv.FormatInt(*githubUser.ID, 10),
		Email:     *githubUser.Email,
		Name:      githubUser.Name,
	})
	if err != nil {
		log.Error().Err(err).Msg("get or create user")
		o.fail(w, r, redirectPath, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	session.Values["visitor_id"] = user.VisitorID
	session.Values["id"] = user.ID
	err = sessions.Save(r, w)

	if err != nil {
		log.Error().Err(err).Msg("save session")
		o.fail(w, r, redirectPath, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	u, _ := o.router.Get("credentials").URL()

	http.Redirect(w, r, fmt.Sprintf("%s%s", o.apiPath, u.Path), http.StatusFound)
}

func (o *GithubOAuth2Handler) CredentialsHandler(w http.ResponseWriter, r *http.Request) {
	session, err := o.store.Get(r, SESSION_STORE_KEY)
	if err != nil {
		util.WriteError(w, http.StatusBadRequest, "Aborted")
		return
	}

	redirectPath, _ := session.Values["redirect_path"].(string)

	visitorID, ok := session.Values["visitor_id"].(string)
	if !ok {
		o.fail(w, r, redirectPath, http.StatusBadRequest, "no identity")
		return
	}
	id, ok := session.Values["id"].(int)
	if !ok {
		o.fail(w, r, redirectPath, http.StatusBadRequest, "no id")
		return
	}

	ctx, cancel := util.GetContextWithTimeout(context.Background())
	defer cancel()
	t, err := o.authCache.GenerateAndSaveToken(ctx, visitorID, id)

	if err != nil {
		log.Error().Err(err).Msg("save token")
		o.fail(w, r, redirectPath, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	session.Options.MaxAge = -1

	err = session.Save(r, w)

	if err != nil {
		log.Error().Err(err).Msg("expire session")
		o.fail(w, r, redirectPath, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	authToken := &domain.AuthToken{
		AccessToken: t,
		TokenType:   "bearer",
		ExpiresIn:   o.authCache.GetTokenExpiry(),
	}

	if redirectPath == "" {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		util.WriteJson(w, authToken)
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:   "access_token",
			Value:  authToken.AccessToken,
			MaxAge: int(authToken.ExpiresIn.Seconds()),
			Path:   "/",
		})
		http.Redirect(w, r, redirectPath, http.StatusFound)
	}
}

func (o *GithubOAuth2Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	authUser := r.Context().Value("user").(middleware.AuthUserValue)
	ctx, cancel := util.GetContextWithTimeout(context.Background())
	defer cancel()
	err := o.authCache.DeleteToken(ctx, authUser.Token)
	if err != nil {
		log.Error().Err(err).Msg("delete token")
		util.WriteInternalServerError(w)
		return
	}
	util.WriteSuccess(w, "Signed out.")
}

func NewGithubOAuth2Handler(
	r *mux.Router,
	userRepo domain.UserRepository,
	authCache domain.AuthCache,
	clientSecret string,
	clientID string,
	sessionKey string,
	apiPath string,
	prefix string,
) *GithubOAuth2Handler {
	o := &GithubOAuth2Handler{
		store: sessions.NewCookieStore([]byte(sessionKey)),
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  githubAuthorizeUrl,
				TokenURL: githubTokenUrl,
			},
			Scopes: []string{},
		},
		router:    r,
		userRepo:  userRepo,
		authCache: authCache,
		apiPath:   apiPath,
	}

	o.router = r.PathPrefix(prefix).Subrouter()
	o.router.HandleFunc("/login", o.LoginHandler).Methods("GET")
	o.router.HandleFunc("/callback", o.CallbackHandler).Methods("GET")
	o.router.HandleFunc("/credentials", o.CredentialsHandler).Methods("GET").Name("credentials")
	o.router.HandleFunc("/logout", o.Middleware(http.HandlerFunc(o.LogoutHandler)).ServeHTTP).Methods("GET")

	return o
}
