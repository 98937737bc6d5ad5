package public

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/langowen/cotizaya/deploy/config"
	mwLogger "github.com/langowen/cotizaya/internal/api_service/ports/http/public/middleware/logger"
	"github.com/langowen/cotizaya/internal/entities"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Server  *http.Server
	cfg     *config.Config
	service Service
}

func NewServer(server *http.Server, cfg *config.Config, service Service) *Server {
	return &Server{
		Server:  server,
		cfg:     cfg,
		service: service,
	}
}

func StartServer(ctx context.Context, service Service, cfg *config.Config) <-chan struct{} {
	serverConfig := &http.Server{
		Addr:         ":" + cfg.HTTPServer.Port,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	server := NewServer(serverConfig, cfg, service)
	serverConfig.Handler = server.Router()

	doneChan := make(chan struct{})

	go func() {
		if err := server.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to stop server", "error", err)
		}

		close(doneChan)
	}()

	return doneChan
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mwLogger.New())
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/rates", func(r chi.Router) {
		r.Get("/", s.GetBoard)
		r.Post("/refresh", s.RequestRefresh)
		r.Get("/{currency}", s.GetRate)
		r.Get("/{currency}/history", s.GetHistory)
	})

	r.Get("/news", s.GetNews)
	r.Get("/convert", s.Convert)

	r.Route("/balances", func(r chi.Router) {
		r.Get("/", s.GetBalances)
		r.Put("/", s.PutBalances)
		r.Delete("/", s.DeleteBalances)
		r.Get("/total", s.GetBalanceTotal)
	})

	r.Get("/brief", s.GetBrief)

	r.Get("/preferences/theme", s.GetTheme)
	r.Put("/preferences/theme", s.PutTheme)

	return r
}

func RespondWithJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func RespondWithError(w http.ResponseWriter, code int, message string, details ...string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)

	errorText := message
	if len(details) > 0 {
		errorText += "\nDetails: " + details[0]
	}

	if _, err := w.Write([]byte(errorText)); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}

// respondWithServiceError maps domain errors to status codes. Unexpected
// errors are logged and reported without their details.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entities.ErrUnknownCurrency),
		errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrInvalidRequest):
		RespondWithError(w, http.StatusBadRequest, "bad request", err.Error())
	case errors.Is(err, entities.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, entities.ErrNoSnapshot),
		errors.Is(err, entities.ErrRateUnavailable):
		RespondWithError(w, http.StatusServiceUnavailable, "rates not loaded yet")
	default:
		slog.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		RespondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
