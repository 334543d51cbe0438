package http

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"globetrotter-service/internal/app"
)

// Services bundles the use cases the REST surface exposes.
type Services struct {
	Auth       *app.AuthService
	Game       *app.GameService
	Challenges *app.ChallengeService
	Catalog    *app.CatalogService
}

type RouterOptions struct {
	AllowedOrigins []string
	AdminKey       string
}

// NewRouter mounts every route under /api plus /healthz.
func NewRouter(svc Services, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	authed := RequireAuth(svc.Auth)
	authH := NewAuthHandler(svc.Auth)
	gameH := NewGameHandler(svc.Game)
	challengeH := NewChallengeHandler(svc.Challenges)
	datasetH := NewDatasetHandler(svc.Catalog)
	wsH := NewWSHandler(svc.Challenges, originChecker(origins))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.With(authed).Get("/me", authH.Me)
			r.Get("/user/{username}", authH.Profile)
		})

		r.Route("/game", func(r chi.Router) {
			r.Get("/question", gameH.Question)
			r.With(authed).Post("/answer", gameH.Answer)
			r.With(authed).Get("/stats", gameH.Stats)
			r.Get("/leaderboard", gameH.Leaderboard)
		})

		r.Route("/challenge", func(r chi.Router) {
			r.With(authed).Post("/create", challengeH.Create)
			r.With(authed).Post("/join/{code}", challengeH.Join)
			r.With(authed).Put("/update/{code}", challengeH.UpdateScore)
			r.Get("/{code}", challengeH.Get)
			r.Get("/{code}/ws", wsH.ServeWS)
		})

		r.Route("/dataset", func(r chi.Router) {
			r.Use(RequireAdmin(opts.AdminKey))
			r.Post("/seed", datasetH.Seed)
			r.Post("/expand", datasetH.Expand)
			r.Get("/destinations", datasetH.List)
			r.Post("/destination", datasetH.Add)
		})
	})
	return r
}

func originChecker(origins []string) func(r *http.Request) bool {
	if slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.ContainsFunc(origins, func(o string) bool {
			return strings.EqualFold(strings.TrimRight(o, "/"), origin)
		})
	}
}
