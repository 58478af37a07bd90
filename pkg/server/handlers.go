package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"github.com/shouni/logo-reimaginer/pkg/ingest"
	"github.com/shouni/logo-reimaginer/pkg/workflow"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	State   *workflow.View `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, msg string, sess *workflow.Session) {
	resp := errorResponse{Error: kind, Message: msg}
	if sess != nil {
		v := sess.Snapshot()
		resp.State = &v
	}
	writeJSON(w, code, resp)
}

type pageData struct {
	BrandName string
	Rules     []string
	MaxBytes  int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.session(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{BrandName: s.cfg.BrandName, Rules: s.cfg.Rules, MaxBytes: s.ingestor.MaxBytes()}
	if err := s.page.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "画面の描画に失敗しました", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := s.previews.Open(chi.URLParam(r, "token"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	slot, err := domain.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.ingestor.MaxBytes()+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			sess.ReportIngestionError(slot, ingest.ErrTooLarge)
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", ingest.ErrTooLarge.Error(), sess)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "multipart field \"file\" is required", sess)
		return
	}
	defer file.Close()

	img, err := s.ingestor.Ingest(file, header.Filename)
	if err != nil {
		slog.WarnContext(r.Context(), "画像の取り込みに失敗しました", "slot", slot, "error", err)
		sess.ReportIngestionError(slot, errors.Unwrap(err))
		writeError(w, http.StatusUnprocessableEntity, "ingestion_failed", err.Error(), sess)
		return
	}

	sess.SetImage(slot, img)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	slot, err := domain.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
		return
	}
	sess.RemoveImage(slot)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if _, err := sess.Start(r.Context()); err != nil {
		s.writeGuardError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusAccepted, sess.Snapshot())
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if _, err := sess.StartRetry(r.Context()); err != nil {
		s.writeGuardError(w, err, sess)
		return
	}
	writeJSON(w, http.StatusAccepted, sess.Snapshot())
}

func (s *Server) writeGuardError(w http.ResponseWriter, err error, sess *workflow.Session) {
	switch {
	case errors.Is(err, workflow.ErrNoMainImage):
		writeError(w, http.StatusUnprocessableEntity, "missing_main_image", err.Error(), sess)
	case errors.Is(err, workflow.ErrInFlight):
		writeError(w, http.StatusConflict, "in_flight", err.Error(), sess)
	case errors.Is(err, workflow.ErrNothingToRetry):
		writeError(w, http.StatusConflict, "nothing_to_retry", err.Error(), sess)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error(), sess)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, r, "inline")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, r, "attachment")
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, disposition string) {
	sess := s.session(w, r)
	res, ok := sess.Result()
	if !ok {
		writeError(w, http.StatusNotFound, "no_result", "no generated image is available", sess)
		return
	}
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	if disposition == "attachment" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.cfg.DownloadName))
	} else {
		w.Header().Set("Content-Disposition", "inline")
	}
	_, _ = w.Write(res.Data)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.store.Delete(c.Value)
	}
	s.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
