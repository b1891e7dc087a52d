package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasktracker/internal/api/handlers"
	"tasktracker/internal/middleware"
	"tasktracker/internal/service"
	"tasktracker/internal/views"
)

// Options holds the HTTP-layer settings taken from configuration.
type Options struct {
	CookieSecure     bool
	SessionTTL       time.Duration
	RateLimitMax     int
	CORSAllowOrigins string
}

// Services are the application operations the handlers call.
type Services struct {
	Auth   *service.AuthService
	Tasks  *service.TaskService
	Users  *service.UserService
	Checks map[string]handlers.Check
}

// NewApp builds the Fiber application with views, middleware and every route.
func NewApp(svc Services, opts Options) (*fiber.App, error) {
	engine, err := views.New()
	if err != nil {
		return nil, err
	}
	if err := engine.Load(); err != nil {
		return nil, err
	}

	// Immutable: form values and params outlive the request in the stores.
	app := fiber.New(fiber.Config{
		Views:                 engine,
		ViewsLayout:           views.Layout,
		Immutable:             true,
		DisableStartupMessage: true,
	})
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{AllowOrigins: opts.CORSAllowOrigins}))
	if opts.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: time.Minute,
		}))
	}

	health := handlers.NewHealthHandler(svc.Checks)
	app.Get("/health", health.Liveness)
	app.Get("/health/ready", health.Readiness)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	cookies := middleware.NewCookieHelper(opts.CookieSecure)
	app.Use(cookies.Flash())
	app.Use(middleware.LoadPrincipal(svc.Auth, cookies))

	RegisterRoutes(app, svc, cookies, opts.SessionTTL)
	return app, nil
}

func RegisterRoutes(app *fiber.App, svc Services, cookies *middleware.CookieHelper, sessionTTL time.Duration) {
	auth := handlers.NewAuthHandler(svc.Auth, cookies, sessionTTL)
	tasks := handlers.NewTaskHandler(svc.Tasks, cookies)
	users := handlers.NewUserHandler(svc.Users, cookies)

	requireAuth := middleware.RequireAuth(cookies)
	anonymousOnly := middleware.RequireAnonymous()

	app.Get("/", auth.Home)

	// Auth
	app.Get("/register", anonymousOnly, auth.RegisterPage)
	app.Post("/register", anonymousOnly, auth.Register)
	app.Get("/login", anonymousOnly, auth.LoginPage)
	app.Post("/login", anonymousOnly, auth.Login)
	app.Get("/logout", requireAuth, auth.Logout)

	// Users
	app.Get("/dashboard", requireAuth, users.Dashboard)
	app.Get("/promote/:user_id", requireAuth, users.Promote)
	app.Get("/demote/:user_id", requireAuth, users.Demote)

	// Tasks
	app.Get("/task", requireAuth, tasks.List)
	app.Post("/task", requireAuth, tasks.Create)
	app.Get("/show_task", requireAuth, tasks.ShowTasks)
	app.Post("/task/:id/in-progress", requireAuth, tasks.MarkInProgress)
	app.Post("/task/:id/done", requireAuth, tasks.MarkDone)
	app.Post("/task/:id/delete", requireAuth, tasks.Delete)
	app.Get("/task/:id/edit", requireAuth, tasks.EditPage)
	app.Post("/task/:id/edit", requireAuth, tasks.Edit)
	app.Post("/update_task/:id", requireAuth, tasks.UpdateTask)

	// Reachable without a session.
	app.Post("/mark_todo/:id", tasks.MarkTodo)
}
