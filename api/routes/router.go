package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mvaldez/genstudio-backend/api/controllers"
	"github.com/mvaldez/genstudio-backend/api/middleware"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers. Pingers may
// contain nil values for backends not configured in this deployment.
type Dependencies struct {
	Generation controllers.GenerationService
	Jobs       controllers.JobReader
	Media      controllers.MediaService
	Quota      controllers.QuotaService
	Pingers    map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/images", func(r chi.Router) {
			r.Post("/generate", controllers.ImageGenerate(deps.Generation, logg))
			r.Post("/edit", controllers.ImageEdit(deps.Generation, logg))
		})

		r.Route("/videos", func(r chi.Router) {
			r.Post("/generate", controllers.VideoGenerate(deps.Generation, logg))
			r.Post("/animate", controllers.VideoAnimate(deps.Generation, logg))
			r.Get("/status", controllers.VideoStatus(deps.Generation, deps.Jobs, logg))
		})

		r.Route("/speech", func(r chi.Router) {
			r.Post("/generate", controllers.SpeechGenerate(deps.Generation, logg))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", controllers.JobList(deps.Jobs, logg))
			r.Get("/{jobId}", controllers.JobDetail(deps.Jobs, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.Get("/", controllers.MediaList(deps.Media, logg))
			r.Get("/recent", controllers.MediaRecent(deps.Media, logg))
			r.Get("/stats", controllers.MediaStats(deps.Media, logg))
			r.Get("/{mediaId}", controllers.MediaGet(deps.Media, logg))
			r.Get("/{mediaId}/metadata", controllers.MediaMetadata(deps.Media, logg))
			r.Delete("/{mediaId}", controllers.MediaDelete(deps.Media, logg))
		})

		r.Get("/quota", controllers.QuotaStatus(deps.Quota, logg))
	})

	return r
}
