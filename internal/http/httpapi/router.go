package httpapi

import (
	stdhttp "net/http"
	"time"

	"videoserver/internal/http/handlers"
	"videoserver/internal/infra"
	mw "videoserver/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions carries everything the router wires besides the App.
type RouterOptions struct {
	Logger        infra.Logger
	Metrics       *infra.Metrics
	JWTSecret     string
	DefaultLocale string
	CountryLookup mw.CountryLookup
	RateLimit     int
	StaticDir     string
	CORSOrigins   []string
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		mw.Logger(opts.Logger),
		mw.CORS(opts.CORSOrigins),
	)
	if opts.RateLimit > 0 {
		r.Use(mw.RateLimit(opts.RateLimit, time.Minute))
	}
	if opts.Metrics != nil {
		r.Use(mw.Metrics(opts.Metrics))
		r.Method(stdhttp.MethodGet, "/metrics", promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/v1/healthz", app.Health)

	if opts.StaticDir != "" {
		fs := stdhttp.StripPrefix("/static/", stdhttp.FileServer(stdhttp.Dir(opts.StaticDir)))
		r.Method(stdhttp.MethodGet, "/static/*", fs)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(
			mw.AuthJWT(opts.JWTSecret),
			mw.Locale(opts.DefaultLocale, opts.CountryLookup),
		)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", app.ProjectsCreate)
			r.Get("/", app.ProjectsList)
			r.Get("/{project_id}", app.ProjectsGet)
			r.Patch("/{project_id}", app.ProjectsPatch)
			r.Post("/{project_id}/archive", app.ProjectsArchive)
			r.Post("/{project_id}/videos", app.VideosGenerate)
		})

		r.Route("/videos", func(r chi.Router) {
			r.Get("/{video_id}", app.VideoStatus)
			r.Post("/{video_id}/edit", app.VideosEdit)
			r.Get("/{video_id}/lineage", app.VideoLineage)
		})

		r.Get("/stats/summary", app.StatsSummary)
	})

	return r
}
