package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-trainer/internal/quiz"
	"github.com/mind-engage/mindengage-trainer/internal/rbac"
	"github.com/mind-engage/mindengage-trainer/internal/trainer"
)

// Permissions checked by the routes below. Admins hold all of them.
const (
	PermSetCreate     = "set:create"
	PermTableManage   = "table:manage"
	PermDashboardView = "dashboard:view"
	PermResultViewAll = "result:view-all"
	PermTopicView     = "topic:view"
	PermTestTake      = "test:take"
)

// Mount registers the authenticated API on r. The caller is expected to have
// put subject and role into the request context.
func Mount(r chi.Router, svc *trainer.Service, st quiz.Store) {
	r.With(rbac.Require(PermSetCreate)).Post("/generate/preview", PreviewHandler(svc))
	r.With(rbac.Require(PermSetCreate)).Post("/question-sets", SaveSetHandler(svc))

	r.With(rbac.Require(PermTopicView)).Get("/categories/{category}/topics", TopicsHandler(svc))
	r.With(rbac.Require(PermTopicView)).Get("/categories/{category}/topics/{midTopic}/sets", TopicSetsHandler(svc))

	r.With(rbac.Require(PermTestTake)).Get("/question-sets/{id}/test", TestHandler(svc))
	r.With(rbac.Require(PermTestTake)).Post("/question-sets/{id}/complete", CompleteHandler(svc))

	r.With(rbac.RequireOwnerOr(PermResultViewAll, reportOwner)).Get("/reports/*", ReportHandler(svc))
	r.With(rbac.Require(PermDashboardView)).Get("/dashboard/learners", LearnerStatsHandler(svc))

	r.Route("/tables", func(tr chi.Router) {
		tr.Use(rbac.Require(PermTableManage))
		MountTables(tr, st)
	})
}
