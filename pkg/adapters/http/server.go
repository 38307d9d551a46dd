package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
)

// Server serves the planning and mission API of an engine.
type Server struct {
	engine   *waypoint.Engine
	sensor   ports.Sensor
	executor ports.Executor
	runner   *runner.Runner
	sessions *session.Manager
	streams  *StreamManager
	metrics  http.Handler
	observer func(*domain.Mission)
	logger   *slog.Logger

	apiVersion string
}

// Option configures the Server.
type Option func(*Server)

// WithSensor reads the live world for /state, /map/graph and planning requests
// that carry no state. Without it the map's initial state is used.
func WithSensor(sensor ports.Sensor) Option {
	return func(s *Server) {
		s.sensor = sensor
	}
}

// WithExecutor enables POST /missions. It requires WithSensor.
func WithExecutor(executor ports.Executor) Option {
	return func(s *Server) {
		s.executor = executor
	}
}

// WithSessions records missions through m. Defaults to an in-memory store.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMissionObserver is called with every finished mission.
func WithMissionObserver(fn func(*domain.Mission)) Option {
	return func(s *Server) {
		s.observer = fn
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for engine.
func NewHandler(engine *waypoint.Engine, opts ...Option) (http.Handler, error) {
	if engine == nil {
		return nil, errors.New("http handler requires an engine")
	}
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)

	if s.executor != nil {
		if s.sensor == nil {
			return nil, errors.New("an executor requires a sensor")
		}
		rn, err := engine.Runner(s.sensor, s.executor,
			runner.WithLogger(s.logger),
			runner.WithHooks(domain.PlannerHooks{OnStep: s.onStep}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build runner: %w", err)
		}
		s.runner = rn
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	s.apiVersion = doc.Info.Version
	router, err := newRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi router: %w", err)
	}

	r := chi.NewRouter()
	r.Use(requestValidator(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/map", s.GetMap)
	r.Get("/map/graph", s.GetMapGraph)
	r.Get("/state", s.GetState)
	r.Post("/plan", s.Plan)
	r.Get("/missions", s.ListMissions)
	r.Post("/missions", s.CreateMission)
	r.Get("/missions/{id}", s.GetMission)
	r.Delete("/missions/{id}", s.DeleteMission)
	r.Get("/events", s.SubscribeEvents)

	return enableCORS(r), nil
}

// Streams exposes the event fan-out, mainly for tests.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Waypoint API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type missionKey struct{}

func withMission(ctx context.Context, m *domain.Mission) context.Context {
	return context.WithValue(ctx, missionKey{}, m)
}

func missionFrom(ctx context.Context) (*domain.Mission, bool) {
	m, ok := ctx.Value(missionKey{}).(*domain.Mission)
	return m, ok
}
