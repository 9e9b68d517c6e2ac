package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the task routes on r.
func (s *TaskHandler) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck) // GET /health
	r.Get("/ready", s.Ready)        // GET /ready

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.GetTasks)  // GET /tasks
		r.Post("/", s.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", s.CompleteTaskByID)  // PUT /tasks/{id}
			r.Delete("/", s.DeleteTaskByID) // DELETE /tasks/{id}
		})
	})
}
