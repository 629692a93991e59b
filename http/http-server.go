package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"github.com/programme-lv/autograde/app"
	assignmenthttp "github.com/programme-lv/autograde/assignment/http"
	coursehttp "github.com/programme-lv/autograde/course/http"
	extensionhttp "github.com/programme-lv/autograde/extension/http"
	"github.com/programme-lv/autograde/logger"
	plagiarismhttp "github.com/programme-lv/autograde/plagiarism/http"
	reporthttp "github.com/programme-lv/autograde/report/http"
	submhttp "github.com/programme-lv/autograde/subm/http"
	"github.com/programme-lv/autograde/user/auth"
	userhttp "github.com/programme-lv/autograde/user/http"
)

type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type Options struct {
	AllowedOrigins []string
	JwtKey         []byte
	LogLevel       slog.Level
	// Concise switches request logs to the short text format.
	Concise bool
	// StatsInterval enables periodic per-route timing logs when positive.
	StatsInterval time.Duration
}

type HttpServer struct {
	router *chi.Mux
	stats  *statsLogger
}

func NewHttpServer(srvcs *app.Services, opts Options) *HttpServer {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("autograde", httplog.Options{
		LogLevel:         opts.LogLevel,
		Concise:          opts.Concise,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(contextLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	server := &HttpServer{router: router}
	if opts.StatsInterval > 0 {
		server.stats = newStatsLogger(reqLogger.Logger, opts.StatsInterval)
		router.Use(server.stats.middleware)
	}

	router.Use(auth.GetJwtAuthMiddleware(opts.JwtKey))

	handlers := []routeRegistrar{
		userhttp.NewUserHttpHandler(srvcs.Users, opts.JwtKey),
		coursehttp.NewCourseHttpHandler(srvcs.Courses),
		assignmenthttp.NewAssignmentHttpHandler(srvcs.Assignments, srvcs.Courses),
		submhttp.NewSubmHttpHandler(srvcs.Recorder, srvcs.Assignments),
		extensionhttp.NewExtensionHttpHandler(srvcs.Extensions, srvcs.Assignments, srvcs.Courses),
		reporthttp.NewReportHttpHandler(srvcs.Reports, srvcs.Assignments, srvcs.Courses),
		plagiarismhttp.NewPlagiarismHttpHandler(srvcs.Plagiarism, srvcs.Assignments),
	}
	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	return server
}

// contextLogger makes the request logger available to services through logger.FromContext.
func contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := httplog.LogEntry(r.Context()).With("request_id", uuid.NewString())
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
	})
}

func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (httpserver *HttpServer) Start(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if httpserver.stats != nil {
		go httpserver.stats.run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
