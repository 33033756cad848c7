package handler

import "github.com/go-chi/chi/v5"

// Routes registers the REST surface on r. The live editing socket is
// mounted by the server since it needs the session manager.
func Routes(r chi.Router, fh *FormHandler, rh *RuntimeHandler, ah *ActivityHandler) {
	r.Get("/healthz", HandleHealth)
	r.Get("/v1/field-types", HandleFieldTypes)
	r.Post("/v1/lint", rh.HandleLint)
	r.Post("/v1/activity/search", ah.HandleSearchActivity)

	r.Route("/v1/forms", func(r chi.Router) {
		r.Post("/", fh.HandleCreate)
		r.Get("/", fh.HandleList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", fh.HandleGet)
			r.Put("/", fh.HandleReplace)
			r.Delete("/", fh.HandleDelete)

			r.Post("/fields", fh.HandleAddField)
			r.Post("/fields/reorder", fh.HandleReorderFields)
			r.Patch("/fields/{field_id}", fh.HandleUpdateField)
			r.Delete("/fields/{field_id}", fh.HandleRemoveField)
			r.Post("/fields/{field_id}/duplicate", fh.HandleDuplicateField)
			r.Post("/fields/{field_id}/options", fh.HandleAddOption)
			r.Put("/fields/{field_id}/options/{index}", fh.HandleUpdateOption)
			r.Delete("/fields/{field_id}/options/{index}", fh.HandleRemoveOption)

			r.Post("/sections", fh.HandleAddSection)
			r.Post("/sections/reorder", fh.HandleReorderSections)
			r.Patch("/sections/{section_id}", fh.HandleUpdateSection)
			r.Delete("/sections/{section_id}", fh.HandleRemoveSection)

			r.Patch("/styling", fh.HandleUpdateStyling)

			r.Post("/evaluate", rh.HandleEvaluate)
			r.Post("/validate", rh.HandleValidate)
			r.Get("/preview", rh.HandlePreview)
			r.Get("/canvas", rh.HandleCanvas)

			r.Get("/activity", ah.HandleGetFormActivity)
		})
	})
}
