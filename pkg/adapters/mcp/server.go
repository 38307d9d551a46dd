package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/rearrange"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
)

// PlanArgs are the arguments of the plan tool.
type PlanArgs struct {
	Tasks string `json:"tasks"`
	State string `json:"state,omitempty"`
}

// PlanResult is the output of the plan tool.
type PlanResult struct {
	Found  bool     `json:"found" jsonschema_description:"Whether a plan exists"`
	Tasks  []string `json:"tasks" jsonschema_description:"The parsed task list"`
	Plan   []string `json:"plan" jsonschema_description:"Primitive steps in execution order"`
	Reason string   `json:"reason,omitempty" jsonschema_description:"Why no plan was found"`
}

// MissionArgs are the arguments of the run_mission tool.
type MissionArgs struct {
	Tasks   string `json:"tasks"`
	RobotID string `json:"robot_id,omitempty"`
}

// MissionResult summarises a finished mission.
type MissionResult struct {
	ID         string            `json:"id"`
	RobotID    string            `json:"robot_id"`
	Outcome    domain.Outcome    `json:"outcome" jsonschema_description:"completed, failed or no_plan"`
	Plan       []string          `json:"plan"`
	Executed   int               `json:"executed"`
	FailedStep int               `json:"failed_step"`
	Error      string            `json:"error,omitempty"`
	Changes    *domain.WorldDiff `json:"changes,omitempty"`
}

// RearrangeArgs are the arguments of the rearrange tool.
type RearrangeArgs struct {
	Constraint string `json:"constraint,omitempty"`
	Execute    bool   `json:"execute,omitempty"`
}

// RearrangeResult is the output of the rearrange tool.
type RearrangeResult struct {
	Constraint string           `json:"constraint"`
	Pairs      []rearrange.Pair `json:"pairs"`
	Plan       []string         `json:"plan"`
	Mission    *MissionResult   `json:"mission,omitempty"`
}

// Server exposes a Waypoint engine as an MCP server.
type Server struct {
	engine   *waypoint.Engine
	sensor   ports.Sensor
	executor ports.Executor
	runner   *runner.Runner
	sessions *session.Manager
	solver   *rearrange.Solver
	observer func(*domain.Mission)
	logger   *slog.Logger

	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSensor reads the live world; without it the map's initial state is used.
func WithSensor(sensor ports.Sensor) Option {
	return func(s *Server) { s.sensor = sensor }
}

// WithExecutor enables the run_mission tool and rearrange execution. It requires WithSensor.
func WithExecutor(executor ports.Executor) Option {
	return func(s *Server) { s.executor = executor }
}

// WithSessions records missions through m.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) { s.sessions = m }
}

// WithSolver sets the default rearrangement solver.
func WithSolver(solver *rearrange.Solver) Option {
	return func(s *Server) { s.solver = solver }
}

// WithMissionObserver is called with every finished mission.
func WithMissionObserver(fn func(*domain.Mission)) Option {
	return func(s *Server) { s.observer = fn }
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *waypoint.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("mcp server requires an engine")
	}
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("waypoint-mcp", strings.TrimSpace(waypoint.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.executor != nil {
		if s.sensor == nil {
			return nil, errors.New("an executor requires a sensor")
		}
		rn, err := engine.Runner(s.sensor, s.executor, runner.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to build runner: %w", err)
		}
		s.runner = rn
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	if s.solver == nil {
		solver, err := rearrange.New(rearrange.DefaultConstraint, rearrange.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.solver = solver
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("plan",
		mcp.WithDescription("Find a plan for a task list such as 'transport box1 p9; navigate_to p1'. Does not move the robot."),
		mcp.WithString("tasks", mcp.Required(), mcp.Description("Tasks, one per line or separated by ';'")),
		mcp.WithString("state", mcp.Description("JSON world state to plan from (optional, defaults to the current world)")),
		mcp.WithOutputSchema[PlanResult](),
	), mcp.NewStructuredToolHandler(s.handlePlan))

	s.mcpServer.AddTool(mcp.NewTool("describe_world",
		mcp.WithDescription("Describe the rooms, doors, boxes and robot of the current world."),
	), s.handleDescribeWorld)

	s.mcpServer.AddTool(mcp.NewTool("rearrange",
		mcp.WithDescription("Assign one box to every room under a constraint and plan the deliveries."),
		mcp.WithString("constraint", mcp.Description("Expression over room and box, e.g. 'box.color != room.color'")),
		mcp.WithBoolean("execute", mcp.Description("Run the deliveries as a mission")),
		mcp.WithOutputSchema[RearrangeResult](),
	), mcp.NewStructuredToolHandler(s.handleRearrange))

	if s.runner == nil {
		return
	}
	s.mcpServer.AddTool(mcp.NewTool("run_mission",
		mcp.WithDescription("Sense the world, plan the tasks and execute the plan on the robot."),
		mcp.WithString("tasks", mcp.Required(), mcp.Description("Tasks, one per line or separated by ';'")),
		mcp.WithString("robot_id", mcp.Description("Robot to run on (optional)")),
		mcp.WithOutputSchema[MissionResult](),
	), mcp.NewStructuredToolHandler(s.handleRunMission))
}

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args PlanArgs) (PlanResult, error) {
	tasks, err := runner.ParseInput(args.Tasks)
	if err != nil {
		s.logger.Warn("MCP Plan: Input rejected", "error", err, "size", len(args.Tasks))
		return PlanResult{}, fmt.Errorf("input rejected: %w", err)
	}

	var state *domain.WorldState
	if args.State != "" {
		var in domain.WorldState
		if err := json.Unmarshal([]byte(args.State), &in); err != nil {
			return PlanResult{}, fmt.Errorf("invalid state: %w", err)
		}
		boxes := make(map[string]string, len(in.Positions))
		for k, v := range in.Positions {
			if k != domain.Robot {
				boxes[k] = v
			}
		}
		state = domain.NewWorldState(in.RobotAt(), in.Doors, boxes, in.Carrying)
	} else if state, err = s.currentState(ctx); err != nil {
		return PlanResult{}, fmt.Errorf("sense failed: %w", err)
	}

	res := PlanResult{Tasks: domain.Plan(tasks).Strings(), Plan: []string{}}
	plan, err := s.engine.Plan(ctx, state, tasks...)
	if errors.Is(err, domain.ErrNoPlan) {
		res.Reason = err.Error()
		return res, nil
	}
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan failed: %w", err)
	}
	res.Found = true
	res.Plan = plan.Strings()
	return res, nil
}

func (s *Server) handleRunMission(ctx context.Context, request mcp.CallToolRequest, args MissionArgs) (MissionResult, error) {
	tasks, err := runner.ParseInput(args.Tasks)
	if err != nil {
		return MissionResult{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.runMission(ctx, args.RobotID, tasks)
}

func (s *Server) runMission(ctx context.Context, robotID string, tasks []domain.Task) (MissionResult, error) {
	if robotID == "" {
		robotID = s.engine.Map().Robot.ID
	}
	m, err := s.sessions.Run(ctx, robotID, tasks, s.runner.Execute)
	if m.Outcome == domain.OutcomePending {
		return MissionResult{}, fmt.Errorf("mission did not run: %w", err)
	}
	if s.observer != nil {
		s.observer(m)
	}
	return MissionResult{
		ID:         m.ID,
		RobotID:    m.RobotID,
		Outcome:    m.Outcome,
		Plan:       m.Plan.Strings(),
		Executed:   m.Executed,
		FailedStep: m.FailedStep,
		Error:      m.Error,
		Changes:    m.Changes,
	}, nil
}

func (s *Server) handleDescribeWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.currentState(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sense failed: %v", err)), nil
	}
	var buf bytes.Buffer
	tui.PrintWorld(&buf, s.engine.Map(), state)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleRearrange(ctx context.Context, request mcp.CallToolRequest, args RearrangeArgs) (RearrangeResult, error) {
	solver := s.solver
	if args.Constraint != "" {
		var err error
		if solver, err = rearrange.New(args.Constraint, rearrange.WithLogger(s.logger)); err != nil {
			return RearrangeResult{}, err
		}
	}

	assignment, err := solver.Solve(s.engine.Map())
	if err != nil {
		return RearrangeResult{}, err
	}
	res := RearrangeResult{Constraint: solver.Constraint(), Pairs: assignment, Plan: []string{}}

	if args.Execute {
		if s.runner == nil {
			return RearrangeResult{}, errors.New("mission execution is not configured")
		}
		mission, err := s.runMission(ctx, "", assignment.Tasks())
		if err != nil {
			return RearrangeResult{}, err
		}
		res.Mission = &mission
		res.Plan = mission.Plan
		return res, nil
	}

	state, err := s.currentState(ctx)
	if err != nil {
		return RearrangeResult{}, fmt.Errorf("sense failed: %w", err)
	}
	plan, err := s.engine.Plan(ctx, state, assignment.Tasks()...)
	if err != nil {
		return RearrangeResult{}, fmt.Errorf("plan failed: %w", err)
	}
	res.Plan = plan.Strings()
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("waypoint://map", "Map Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Map())
		if err != nil {
			return nil, fmt.Errorf("failed to encode map: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "waypoint://map",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("waypoint://graph", "Map Graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		state, err := s.currentState(ctx)
		if err != nil {
			return nil, fmt.Errorf("sense failed: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "waypoint://graph",
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Map(), graph.StateOverlay(state)),
			},
		}, nil
	})
}

func (s *Server) currentState(ctx context.Context) (*domain.WorldState, error) {
	if s.sensor == nil {
		return s.engine.Map().InitialState(), nil
	}
	return s.sensor.Sense(ctx)
}
