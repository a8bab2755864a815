package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"hireline/internal/api"
	"hireline/internal/config"
	"hireline/internal/logging"
	"hireline/internal/stagegraph"
	"hireline/internal/workflow"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("paths.api_bind is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/jobs/{id}/applications", srv.handleApply)
	mux.HandleFunc("GET /api/jobs/{id}/applications", srv.handleListJobApplications)
	mux.HandleFunc("GET /api/applications", srv.handleListOwnApplications)
	mux.HandleFunc("GET /api/applications/{id}", srv.handleGetApplication)
	mux.HandleFunc("GET /api/applications/{id}/history", srv.handleHistory)
	mux.HandleFunc("POST /api/applications/{id}/stage", srv.handleChangeStage)
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	if d.collector != nil {
		mux.Handle("GET /metrics", d.collector.Handler())
	}

	srv.server = &http.Server{
		Handler:           authMiddleware(strings.TrimSpace(cfg.Paths.APIToken), requestContextMiddleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleApply(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}
	app, err := s.daemon.service.ApplyToJob(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ApplicationResponse{Application: api.FromApplication(app)})
}

func (s *apiServer) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}

	var stages []stagegraph.Stage
	for _, value := range r.URL.Query()["stage"] {
		stage, ok := stagegraph.ParseStage(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", value))
			return
		}
		stages = append(stages, stage)
	}

	apps, err := s.daemon.service.ListJobApplications(r.Context(), actor, r.PathValue("id"), stages...)
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ApplicationListResponse{Applications: api.FromApplications(apps)})
}

func (s *apiServer) handleListOwnApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}
	apps, err := s.daemon.service.ListOwnApplications(r.Context(), actor)
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ApplicationListResponse{Applications: api.FromApplications(apps)})
}

func (s *apiServer) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}
	app, err := s.daemon.service.GetApplication(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ApplicationResponse{Application: api.FromApplication(app)})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}
	entries, err := s.daemon.service.History(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: api.FromHistory(entries)})
}

func (s *apiServer) handleChangeStage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "actor headers missing or invalid")
		return
	}

	var req api.StageChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stage, ok := stagegraph.ParseStage(req.Stage)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown stage %q", req.Stage))
		return
	}

	app, _, err := s.daemon.service.ChangeStage(r.Context(), actor, r.PathValue("id"), stage)
	if err != nil {
		s.writeWorkflowError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ApplicationResponse{Application: api.FromApplication(app)})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	counts := make(map[string]int, len(status.StageCounts))
	for stage, count := range status.StageCounts {
		counts[string(stage)] = count
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		StageCounts:  counts,
	})
}

// writeWorkflowError maps the workflow error taxonomy onto HTTP status codes.
// Refused stage moves carry the observed and attempted stages so callers can
// render an actionable message.
func (s *apiServer) writeWorkflowError(w http.ResponseWriter, err error) {
	var terr *workflow.TransitionError
	if errors.As(err, &terr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, api.ErrorBody{
			Error:          terr.Error(),
			CurrentStage:   string(terr.Current),
			AttemptedStage: string(terr.Attempted),
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorBody{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
