package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-optimizer/internal/pipeline"
	"github.com/jonathan/cv-optimizer/internal/storage"
	"github.com/jonathan/cv-optimizer/internal/types"
)

const maxUploadBytes = 10 << 20

// OptimizeRequest is the body of POST /api/optimize.
type OptimizeRequest struct {
	UserID     string `json:"user_id"`
	UserEmail  string `json:"user_email"`
	CVFilePath string `json:"cv_file_path"`
	JobInput   string `json:"job_input"`
	// JobTitle is used when JobInput is empty.
	JobTitle string `json:"job_title"`
}

func (r OptimizeRequest) input() pipeline.Input {
	job := strings.TrimSpace(r.JobInput)
	if job == "" {
		job = strings.TrimSpace(r.JobTitle)
	}
	return pipeline.Input{
		CVSourceRef: strings.TrimSpace(r.CVFilePath),
		JobRawInput: job,
		UserID:      r.UserID,
		Recipient:   strings.TrimSpace(r.UserEmail),
	}
}

// EmailDraft is the generated email returned to the caller.
type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// OptimizeResponse is returned by the optimize endpoints.
type OptimizeResponse struct {
	Status          string                `json:"status"`
	RunID           string                `json:"run_id,omitempty"`
	JobInputKind    string                `json:"job_input_kind,omitempty"`
	JobURL          string                `json:"job_url,omitempty"`
	InitialScore    int                   `json:"initial_score"`
	MatchScore      int                   `json:"match_score"`
	MissingKeywords []string              `json:"missing_keywords"`
	Iterations      int                   `json:"iterations"`
	PDFURL          string                `json:"pdf_url,omitempty"`
	RenderDegraded  bool                  `json:"render_degraded"`
	PersistError    string                `json:"persist_error,omitempty"`
	EmailSent       bool                  `json:"email_sent"`
	EmailDraft      *EmailDraft           `json:"email_draft,omitempty"`
	Delivery        *types.DeliveryRecord `json:"delivery,omitempty"`
	Stage           string                `json:"failed_stage,omitempty"`
	Error           string                `json:"error,omitempty"`
}

// newOptimizeResponse summarizes a run. res may be nil.
func newOptimizeResponse(res *pipeline.Result, err error) OptimizeResponse {
	out := OptimizeResponse{Status: "completed", MissingKeywords: []string{}}
	if err != nil {
		out.Status = "failed"
		out.Error = err.Error()
		if stage, ok := pipeline.FailedStage(err); ok {
			out.Stage = string(stage)
		}
	}
	if res == nil {
		return out
	}

	if res.RunID != uuid.Nil {
		out.RunID = res.RunID.String()
	}
	out.JobInputKind = string(res.JobInputKind)
	out.JobURL = res.ResolvedJobURL
	out.InitialScore = res.InitialScore
	out.MatchScore = res.MatchScore
	if res.MissingKeywords != nil {
		out.MissingKeywords = res.MissingKeywords
	}
	out.Iterations = res.Iterations
	out.RenderDegraded = res.RenderDegraded
	out.PersistError = res.PersistError
	if res.DocumentRef != "" {
		out.PDFURL = "/runs/" + out.RunID + "/document"
	}
	if d := res.Delivery; d != nil {
		out.Delivery = d
		out.EmailSent = d.Status == types.DeliverySent
		if d.Subject != "" || d.Body != "" {
			out.EmailDraft = &EmailDraft{Subject: d.Subject, Body: d.Body}
		}
	}
	return out
}

// handleOptimize runs the pipeline on a CV already on the server's disk.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	s.runAndRespond(r.Context(), w, req.input())
}

// handleOptimizeUpload runs the pipeline on an uploaded CV file.
func (s *Server) handleOptimizeUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	path, err := s.stageUpload(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path) //nolint:errcheck

	req := OptimizeRequest{
		UserID:     r.FormValue("user_id"),
		UserEmail:  r.FormValue("user_email"),
		CVFilePath: path,
		JobInput:   r.FormValue("job_input"),
		JobTitle:   r.FormValue("job_title"),
	}
	s.runAndRespond(r.Context(), w, req.input())
}

// stageUpload copies the "cv" form file to a temp file and returns its path.
// The caller removes the file.
func (s *Server) stageUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("cv")
	if err != nil {
		return "", fmt.Errorf("missing cv file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".pdf", ".txt", ".md":
	default:
		return "", fmt.Errorf("unsupported cv file type %q: use .pdf, .txt or .md", ext)
	}

	tmp, err := os.CreateTemp(s.uploadDir, "cv-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	return tmp.Name(), nil
}

func (s *Server) runAndRespond(ctx context.Context, w http.ResponseWriter, in pipeline.Input) {
	res, err := s.runner.Run(ctx, in)
	resp := newOptimizeResponse(res, err)
	if err != nil {
		s.logger.Warn("optimize request failed", zap.String("run_id", resp.RunID), zap.Error(err))
		s.jsonResponse(w, HTTPStatus(err), resp)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleOptimizeStream runs the pipeline and streams progress as Server-Sent Events.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	in := req.input()
	in.OnProgress = func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", ev); err != nil {
			s.logger.Debug("failed to write progress event", zap.Error(err))
		}
	}

	res, err := s.runner.Run(r.Context(), in)
	resp := newOptimizeResponse(res, err)
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
	}
	sse.WriteEvent("complete", resp) //nolint:errcheck
}

// handleGetRun returns a stored run with its artifact list.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load run", zap.String("run_id", id.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}

	artifacts, err := s.runs.ListArtifacts(r.Context(), id)
	if err != nil {
		s.logger.Warn("failed to list artifacts", zap.String("run_id", id.String()), zap.Error(err))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"run":       run,
		"artifacts": artifacts,
	})
}

// handleGetDocument serves the rendered CV of a run.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil || run.DocumentRef == "" {
		s.errorResponse(w, http.StatusNotFound, "document not found")
		return
	}

	if !strings.HasPrefix(run.DocumentRef, storage.DBRefPrefix) {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(run.DocumentRef)))
		http.ServeFile(w, r, run.DocumentRef)
		return
	}

	docID, ok := storage.ParseDBRef(run.DocumentRef)
	if !ok {
		s.errorResponse(w, http.StatusInternalServerError, "invalid document reference")
		return
	}
	doc, err := s.runs.GetDocument(r.Context(), docID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "document not found")
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		s.logger.Debug("failed to write document", zap.Error(err))
	}
}

// runID parses the {id} path value and checks that history is available.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.runs == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "run history requires a database")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return uuid.Nil, false
	}
	return id, true
}
