package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
)

// PlanRequest is the body of POST /plan. Tasks wins over Input when both are set.
type PlanRequest struct {
	Tasks []domain.Task      `json:"tasks,omitempty"`
	Input string             `json:"input,omitempty"`
	State *domain.WorldState `json:"state,omitempty"`
}

// PlanResponse is the body returned by POST /plan.
type PlanResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Plan  domain.Plan   `json:"plan"`
}

// MissionRequest is the body of POST /missions.
type MissionRequest struct {
	RobotID string        `json:"robot_id,omitempty"`
	Tasks   []domain.Task `json:"tasks,omitempty"`
	Input   string        `json:"input,omitempty"`
}

// StepMessage is the payload of a "step" event.
type StepMessage struct {
	Mission    string      `json:"mission"`
	RobotID    string      `json:"robot_id"`
	Index      int         `json:"index"`
	Task       domain.Task `json:"task"`
	Error      string      `json:"error,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// MissionMessage is the payload of a "mission" event.
type MissionMessage struct {
	Mission    string         `json:"mission"`
	RobotID    string         `json:"robot_id"`
	Outcome    domain.Outcome `json:"outcome"`
	Executed   int            `json:"executed"`
	FailedStep int            `json:"failed_step"`
	Error      string         `json:"error,omitempty"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "waypoint-http",
		"version":     strings.TrimSpace(waypoint.Version),
		"api_version": s.apiVersion,
		"map":         s.engine.Map().Name,
	})
}

// GetMap handles the GET /map request.
func (s *Server) GetMap(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Map())
}

// GetMapGraph handles the GET /map/graph request.
func (s *Server) GetMapGraph(w http.ResponseWriter, r *http.Request) {
	state, err := s.currentState(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Sense error: %v", err), http.StatusBadGateway)
		s.logger.Error("Sense failed", "error", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.engine.Map(), graph.StateOverlay(state)))
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.currentState(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Sense error: %v", err), http.StatusBadGateway)
		s.logger.Error("Sense failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Plan handles the POST /plan request.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Plan: Invalid request body", "error", err)
		return
	}

	tasks, err := resolveTasks(body.Tasks, body.Input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid tasks: %v", err), http.StatusBadRequest)
		return
	}

	var state *domain.WorldState
	if body.State != nil {
		if state, err = normalizeState(body.State); err != nil {
			http.Error(w, fmt.Sprintf("Invalid state: %v", err), http.StatusBadRequest)
			return
		}
	} else if state, err = s.currentState(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Sense error: %v", err), http.StatusBadGateway)
		return
	}

	plan, err := s.engine.Plan(r.Context(), state, tasks...)
	switch {
	case errors.Is(err, domain.ErrNoPlan):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, domain.ErrUnknownTask):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, fmt.Sprintf("Plan error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Plan failed", "error", err)
		return
	}
	if plan == nil {
		plan = domain.Plan{}
	}
	writeJSON(w, http.StatusOK, PlanResponse{Tasks: tasks, Plan: plan})
}

// CreateMission handles the POST /missions request.
// The mission runs synchronously; progress is streamed on /events.
func (s *Server) CreateMission(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		http.Error(w, "Mission execution is not configured", http.StatusNotImplemented)
		return
	}

	var body MissionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateMission: Invalid request body", "error", err)
		return
	}
	tasks, err := resolveTasks(body.Tasks, body.Input)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid tasks: %v", err), http.StatusBadRequest)
		return
	}
	robotID := body.RobotID
	if robotID == "" {
		robotID = s.engine.Map().Robot.ID
	}

	mission, err := s.sessions.Run(r.Context(), robotID, tasks, func(ctx context.Context, m *domain.Mission) error {
		return s.runner.Execute(withMission(ctx, m), m)
	})
	if mission.Outcome == domain.OutcomePending {
		http.Error(w, fmt.Sprintf("Mission error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Mission did not run", "robot_id", robotID, "error", err)
		return
	}
	if err != nil {
		s.logger.Info("Mission ended with error", "mission", mission.ID, "outcome", mission.Outcome, "error", err)
	}

	if s.observer != nil {
		s.observer(mission)
	}
	s.broadcastMission(mission)

	status := http.StatusCreated
	if mission.Outcome == domain.OutcomeNoPlan {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, mission)
}

// ListMissions handles the GET /missions request.
func (s *Server) ListMissions(w http.ResponseWriter, r *http.Request) {
	var robotID *string
	if err := runtime.BindQueryParameter("form", true, false, "robot_id", r.URL.Query(), &robotID); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter robot_id: %v", err), http.StatusBadRequest)
		return
	}
	filter := ""
	if robotID != nil {
		filter = *robotID
	}

	missions, err := s.sessions.History(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("History error: %v", err), http.StatusInternalServerError)
		s.logger.Error("History failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

// GetMission handles the GET /missions/{id} request.
func (s *Server) GetMission(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}
	mission, err := s.sessions.Load(r.Context(), id)
	if errors.Is(err, domain.ErrMissionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, mission)
}

// DeleteMission handles the DELETE /missions/{id} request.
func (s *Server) DeleteMission(w http.ResponseWriter, r *http.Request) {
	id, ok := missionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE).
// Without robot_id the client receives the events of every robot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var robotID *string
	if err := runtime.BindQueryParameter("form", true, false, "robot_id", r.URL.Query(), &robotID); err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter robot_id: %v", err), http.StatusBadRequest)
		return
	}
	key := ""
	if robotID != nil {
		key = *robotID
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(key)
	defer cancel()
	s.logger.Info("SSE: Client subscribed", "robot_id", key)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "robot_id", key)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) onStep(ctx context.Context, ev *domain.StepEvent) {
	m, ok := missionFrom(ctx)
	if !ok {
		return
	}
	msg := StepMessage{
		Mission:    m.ID,
		RobotID:    m.RobotID,
		Index:      ev.Index,
		Task:       ev.Task,
		DurationMS: ev.Duration.Milliseconds(),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	s.publish(m.RobotID, "step", msg)
}

func (s *Server) broadcastMission(m *domain.Mission) {
	s.publish(m.RobotID, "mission", MissionMessage{
		Mission:    m.ID,
		RobotID:    m.RobotID,
		Outcome:    m.Outcome,
		Executed:   m.Executed,
		FailedStep: m.FailedStep,
		Error:      m.Error,
	})
}

func (s *Server) publish(robotID, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Event encode failed", "event", name, "error", err)
		return
	}
	s.streams.Broadcast(robotID, Event{Name: name, Data: data})
}

func (s *Server) currentState(ctx context.Context) (*domain.WorldState, error) {
	if s.sensor == nil {
		return s.engine.Map().InitialState(), nil
	}
	return s.sensor.Sense(ctx)
}

// -- Helpers --

func missionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid format for parameter id: %v", err), http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func resolveTasks(tasks []domain.Task, input string) ([]domain.Task, error) {
	if len(tasks) > 0 {
		return tasks, nil
	}
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: no tasks given", domain.ErrInvalidTask)
	}
	return runner.ParseInput(input)
}

// normalizeState rebuilds a client-supplied state so the carried box has no position
// and the search bookkeeping is initialised.
func normalizeState(in *domain.WorldState) (*domain.WorldState, error) {
	at := in.RobotAt()
	if at == "" {
		return nil, errors.New("state has no robot position")
	}
	boxes := maps.Clone(in.Positions)
	delete(boxes, domain.Robot)
	return domain.NewWorldState(at, in.Doors, boxes, in.Carrying), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
