package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jorge-barreto/pipecraft/internal/catalog"
	"github.com/jorge-barreto/pipecraft/internal/ctxlog"
	"github.com/jorge-barreto/pipecraft/internal/doctor"
	"github.com/jorge-barreto/pipecraft/internal/editor"
	"github.com/jorge-barreto/pipecraft/internal/generate"
	"github.com/jorge-barreto/pipecraft/internal/pipeline"
)

type createPipelineRequest struct {
	Name             string                    `json:"name"`
	Platform         pipeline.Platform         `json:"platform"`
	DeploymentTarget pipeline.DeploymentTarget `json:"deploymentTarget"`
	Language         pipeline.Language         `json:"language"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func (s *Server) handleCreatePipeline(w http.ResponseWriter, r *http.Request) {
	var req createPipelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Platform == "" {
		req.Platform = pipeline.GitHubActions
	}
	if req.DeploymentTarget == "" {
		req.DeploymentTarget = pipeline.TargetCustom
	}
	p, err := s.session.Create(req.Name, req.Platform, req.DeploymentTarget, req.Language)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("pipeline created", "pipeline_id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleLoadPipeline(w http.ResponseWriter, r *http.Request) {
	var p pipeline.Pipeline
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if p.Platform == "" {
		p.Platform = pipeline.GitHubActions
	}
	if p.DeploymentTarget == "" {
		p.DeploymentTarget = pipeline.TargetCustom
	}
	if !p.Platform.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("pipeline: unknown platform %q", p.Platform))
		return
	}
	if !p.DeploymentTarget.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("pipeline: unknown deployment target %q", p.DeploymentTarget))
		return
	}
	loaded, err := s.session.Load(&p)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

func (s *Server) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Current()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleResetPipeline(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddStage(w http.ResponseWriter, r *http.Request) {
	var in editor.StageInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.session.AddStage(in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("stage added", "stage_id", st.ID, "name", st.Name)
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	var patch editor.StagePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.session.UpdateStage(chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleRemoveStage(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.RemoveStage(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("stage removed", "stage_id", st.ID)
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleReorderStages(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.From == nil || req.To == nil {
		writeError(w, http.StatusBadRequest, errors.New("'from' and 'to' are required"))
		return
	}
	if err := s.session.ReorderStages(*req.From, *req.To); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.handleGetPipeline(w, r)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.generated()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	files, err := s.generated()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	name := chi.URLParam(r, "name")
	content, ok := files[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no generated file %q (have %s)", name, strings.Join(generate.FileNames(files), ", ")))
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeText(w, content)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Current()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	findings := doctor.Check(p)
	if findings == nil {
		findings = []doctor.Finding{}
	}
	writeJSON(w, http.StatusOK, findings)
}

func (s *Server) generated() (map[string]string, error) {
	p, err := s.session.Current()
	if err != nil {
		return nil, err
	}
	return generate.Files(p)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.LoadTemplate(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	ctxlog.FromContext(r.Context()).Info("template loaded", "template", chi.URLParam(r, "id"), "pipeline_id", p.ID)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDockerfile(w http.ResponseWriter, r *http.Request) {
	writeText(w, generate.Dockerfile(pipeline.Language(chi.URLParam(r, "language"))))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var seed *uint64
	if v := r.URL.Query().Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid seed %q", v))
			return
		}
		seed = &n
	}

	run, err := s.newSimulator(seed).Run(r.Context())
	logger := ctxlog.FromContext(r.Context())
	if err != nil {
		logger.Info("simulation finished", "run_id", run.ID, "status", run.Status, "error", err)
	} else {
		logger.Info("simulation finished", "run_id", run.ID, "status", run.Status)
	}
	// A failed run is still a successful simulation.
	writeJSON(w, http.StatusOK, run)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var cyclic *pipeline.CyclicDependencyError
	switch {
	case errors.Is(err, pipeline.ErrNoPipeline),
		errors.Is(err, pipeline.ErrStageNotFound),
		errors.Is(err, catalog.ErrUnknownTemplate):
		return http.StatusNotFound
	case errors.As(err, &cyclic):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON body: multiple JSON values")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}
