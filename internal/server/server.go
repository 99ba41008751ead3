// Package server exposes the explorer as an HTTP dashboard.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/census-explorer/internal/analysis"
	"github.com/KaramelBytes/census-explorer/internal/census"
	"github.com/KaramelBytes/census-explorer/internal/metrics"
	"github.com/KaramelBytes/census-explorer/internal/pipeline"
	"github.com/KaramelBytes/census-explorer/internal/session"
)

// Server serves the dashboard pages, the JSON API and the CSV download.
type Server struct {
	sess     *session.Session
	log      *slog.Logger
	metrics  *metrics.Collectors
	gatherer prometheus.Gatherer
	validate *validator.Validate
	router   chi.Router
}

// New builds the router. gatherer may be nil, in which case /metrics is not mounted.
func New(sess *session.Session, log *slog.Logger, m *metrics.Collectors, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		sess:     sess,
		log:      log.With(slog.String("component", "http")),
		metrics:  m,
		gatherer: gatherer,
		validate: newValidator(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", s.handleSummary)
		r.Get("/table", s.handleTable)
		r.Get("/regression", s.handleRegression)
		r.Post("/refresh", s.handleRefresh)
	})

	r.Route("/plots", func(r chi.Router) {
		r.Get("/histogram.html", s.handleHistogram)
		r.Get("/scatter.html", s.handleScatter)
		r.Get("/regression.html", s.handleRegressionPlot)
	})

	r.Get("/download/{file}", s.handleDownload)

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs every request and counts it by route pattern and status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.HTTPRequest(route, strconv.Itoa(status))
		s.log.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)))
	})
}

// AxisRequest is the query of the regression endpoints.
type AxisRequest struct {
	X string `json:"x" validate:"required,display_column"`
	Y string `json:"y" validate:"required,display_column"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("display_column", func(fl validator.FieldLevel) bool {
		return pipeline.IsDisplayColumn(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// axes reads and validates the x and y query parameters.
func (s *Server) axes(r *http.Request) (AxisRequest, error) {
	req := AxisRequest{
		X: strings.TrimSpace(r.URL.Query().Get("x")),
		Y: strings.TrimSpace(r.URL.Query().Get("y")),
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return req, &requestError{msg: "invalid axis " + strings.Join(fields, ", ") + ": choose one of " + strings.Join(pipeline.DisplayColumns(), ", ")}
		}
		return req, &requestError{msg: err.Error()}
	}
	return req, nil
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error to the response status and a short code.
func statusFor(err error) (int, string) {
	var re *requestError
	switch {
	case errors.As(err, &re), errors.Is(err, analysis.ErrUnknownColumn):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case census.IsFetchError(err):
		return http.StatusBadGateway, "FETCH_FAILED"
	default:
		return http.StatusInternalServerError, "PROCESSING_FAILED"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	s.log.ErrorContext(r.Context(), "request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("code", code),
		slog.String("error", err.Error()))

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "an error occurred during data processing: " + msg
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg, Code: code})
}
