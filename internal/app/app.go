package app

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	transport "github.com/simon-dunk/Degree-Compass/internal/http"
	"github.com/simon-dunk/Degree-Compass/internal/http/handlers"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
	"github.com/simon-dunk/Degree-Compass/internal/service"
)

type Options struct {
	Store   repository.Settings
	Planner service.PlannerOptions
}

type App struct {
	handler http.Handler

	Audit    *service.AuditService
	Planner  *service.PlannerService
	Catalog  *service.CatalogService
	Rules    *service.RulesService
	Students *service.StudentsService
	DevTools *service.DevToolsService
}

func New(db *sql.DB, options Options, logger *zap.Logger) *App {
	repos := repository.NewRepositories(db, options.Store)
	txManager := repository.NewSQLTxManager(db, options.Store)

	a := &App{}
	a.Audit = service.NewAuditService(repos, logger.Named("audit"))
	a.Planner = service.NewPlannerService(a.Audit, repos.Courses, logger.Named("planner"), options.Planner)
	a.Catalog = service.NewCatalogService(repos.Courses, txManager, logger.Named("catalog"))
	a.Rules = service.NewRulesService(repos.Rules, logger.Named("rules"))
	a.Students = service.NewStudentsService(repos.Students, txManager, logger.Named("students"))
	a.DevTools = service.NewDevToolsService(repos, txManager, options.Store.Tables, logger.Named("devtools"))

	httpLogger := logger.Named("http")
	router := transport.NewRouter(httpLogger,
		handlers.NewDegreeHandler(a.Audit, a.Planner, httpLogger),
		handlers.NewCourseHandler(a.Catalog, httpLogger),
		handlers.NewRuleHandler(a.Rules, httpLogger),
		handlers.NewStudentHandler(a.Students, httpLogger),
		handlers.NewAdminHandler(a.DevTools, httpLogger),
	)
	a.handler = router.Handler()
	return a
}

func (a *App) Handler() http.Handler {
	return a.handler
}
