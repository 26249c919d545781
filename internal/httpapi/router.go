package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter builds the API. main attaches /shutdown itself since it owns the token.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, Recover, AccessLog, Cors)

	r.Get("/health", HealthHandler{d}.Health)

	mh := MetaHandler{d}
	r.Get("/meta", mh.Meta)
	r.Get("/requirements", mh.Requirements)
	r.Get("/analytics", mh.Analytics)

	// Companies
	ch := CompaniesHandler{d}
	fh := FollowupHandler{d}
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", ch.List)
		r.Post("/", ch.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ch.Get)
			r.Patch("/", ch.UpdateContact)
			r.Delete("/", ch.Delete)
			r.Put("/configuration", ch.Configure)
			r.Put("/status", ch.SetStatus)
			r.Put("/deadline", ch.SetDeadline)
			r.Post("/deadline/extend", ch.ExtendDeadline)
			r.Post("/terminate", ch.Terminate)
			r.Patch("/documents/{docId}", ch.UpdateDocument)
			r.Get("/revisions", ch.Revisions)
			r.Post("/followup", fh.Draft)
		})
	})

	// Config
	cfh := ConfigHandler{d}
	r.Get("/config", cfh.Get)
	r.Put("/config", cfh.Put)
	r.Get("/config/path", cfh.Path)
	r.Get("/config/validate", cfh.Validate)

	// Secrets (read cfgVal per request, NOT a snapshot cfg)
	sh := SecretsHandler{d}
	r.Post("/api/secrets/generation", sh.SetGenerationKey)
	r.Post("/api/secrets/imap", sh.SetIMAPPassword)

	r.Post("/db/checkpoint", DBHandler{d}.Checkpoint)

	// SSE events
	r.Get("/events", EventsHandler{Hub: d.Hub}.ServeSSE)

	return r
}
