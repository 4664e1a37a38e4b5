package handler

import "github.com/go-chi/chi/v5"

// Mount registers the timesheet API under /api/v1
func Mount(r chi.Router, employees *EmployeeHandler, projects *ProjectHandler, reports *ReportHandler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", employees.List)
			r.Post("/", employees.Create)
			r.Get("/{employeeId}", employees.Get)
			r.Delete("/{employeeId}", employees.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Get("/{id}", projects.Get)
			r.Put("/{id}", projects.Update)
			r.Patch("/{id}/status", projects.UpdateStatus)
			r.Delete("/{id}", projects.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/daily", reports.SubmitDaily)
			r.Get("/monthly", reports.Monthly)
			r.Post("/monthly/send", reports.SendMonthly)
		})
	})
}
