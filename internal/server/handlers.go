package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/server/middleware"
)

const maxBodyBytes = 1 << 20

// InlineEndpoint receives inline edits posted by the editable preview.
const InlineEndpoint = "/api/inline"

type valueRequest struct {
	Value *string `json:"value"`
}

type entryFieldRequest struct {
	Field string  `json:"field"`
	Value *string `json:"value"`
}

// workspace resolves the session's workspace, writing an error when the
// request carries no session or its record cannot be read.
func (s *Server) workspace(w http.ResponseWriter, r *http.Request) (*Workspace, bool) {
	id, err := middleware.SessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	ws, err := s.workspaces.Get(r.Context(), id)
	if err != nil {
		s.failure(w, err)
		return nil, false
	}
	return ws, true
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func decodeValue(w http.ResponseWriter, r *http.Request) (string, error) {
	var req valueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	if req.Value == nil {
		return "", &ErrValidation{Field: "value", Message: "is required"}
	}
	return *req.Value, nil
}

// templateParam returns the requested template, falling back to the server default.
func (s *Server) templateParam(r *http.Request) string {
	if t := r.URL.Query().Get("template"); t != "" {
		return string(rendering.Lookup(t).ID())
	}
	return s.template
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleSetPersonal(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := ws.Editor.SetPersonalField(r.Context(), r.PathValue("field"), value); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleSetSummary(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := ws.Editor.SetSummary(r.Context(), value); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleSetHeading(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := ws.Editor.SetHeadingField(r.Context(), r.PathValue("section"), value); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	section, err := ws.Editor.Entries(r.PathValue("section"))
	if err != nil {
		s.failure(w, err)
		return
	}
	id, err := section.Add(r.Context())
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"id":     id,
		"record": ws.Store.Get(),
	})
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	section, err := ws.Editor.Entries(r.PathValue("section"))
	if err != nil {
		s.failure(w, err)
		return
	}

	var req entryFieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failure(w, err)
		return
	}
	if req.Field == "" {
		s.failure(w, &ErrValidation{Field: "field", Message: "is required"})
		return
	}
	if req.Value == nil {
		s.failure(w, &ErrValidation{Field: "value", Message: "is required"})
		return
	}

	if err := section.UpdateField(r.Context(), r.PathValue("id"), req.Field, *req.Value); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	section, err := ws.Editor.Entries(r.PathValue("section"))
	if err != nil {
		s.failure(w, err)
		return
	}
	if err := section.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	list, err := ws.Editor.Skills(r.PathValue("group"))
	if err != nil {
		s.failure(w, err)
		return
	}
	value, err := decodeValue(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}

	changed, err := list.Add(r.Context(), value)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"changed": changed,
		"record":  ws.Store.Get(),
	})
}

// handleRemoveSkill takes the skill from ?value= or, when absent, a JSON body.
func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	list, err := ws.Editor.Skills(r.PathValue("group"))
	if err != nil {
		s.failure(w, err)
		return
	}

	value := r.URL.Query().Get("value")
	if !r.URL.Query().Has("value") {
		if value, err = decodeValue(w, r); err != nil {
			s.failure(w, err)
			return
		}
	}

	changed, err := list.Remove(r.Context(), value)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"changed": changed,
		"record":  ws.Store.Get(),
	})
}

func (s *Server) handleInline(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var edit editor.InlineEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		s.failure(w, err)
		return
	}
	if edit.Template == "" {
		edit.Template = s.template
	}
	if err := ws.Editor.ApplyInline(r.Context(), edit); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Store.Get())
}

// handlePreview renders the record as a standalone page, e.g. for the
// builder's preview frame.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	editable, _ := strconv.ParseBool(q.Get("editable"))
	opts := rendering.PageOptions{
		Editable: editable,
		Theme:    q.Get("theme"),
		Title:    "CV Preview",
	}
	if editable {
		opts.InlineEndpoint = InlineEndpoint
	}

	etag := ws.ETag()
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := rendering.RenderPage(&buf, ws.Store.Get(), s.templateParam(r), opts); err != nil {
		w.Header().Del("ETag")
		s.failure(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	doc, err := s.exporter.ExportRecord(r.Context(), ws.Store.Get(), s.templateParam(r))
	if err != nil {
		s.failure(w, err)
		return
	}
	if doc == nil {
		s.errorResponse(w, http.StatusNotFound, "nothing to export")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(doc.Pages))
	w.Write(doc.Data) //nolint:errcheck
}

func (s *Server) handleIntakeOpen(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	ws.Intake.Open()
	s.jsonResponse(w, http.StatusOK, ws.Intake.Status())
}

func (s *Server) handleIntakeStatus(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, ws.Intake.Status())
}

func (s *Server) handleIntakeClose(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	ws.Intake.Close()
	s.jsonResponse(w, http.StatusOK, ws.Intake.Status())
}

// handleIntakeSubmit waits for the generated record. With
// "Accept: text/event-stream" it streams a pending event followed by a
// record or error event instead.
func (s *Server) handleIntakeSubmit(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}
	var answers intake.Answers
	if err := decodeJSON(w, r, &answers); err != nil {
		s.failure(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.intakeTimeout)
	defer cancel()

	results, err := ws.Intake.Submit(ctx, answers)
	if err != nil {
		s.failure(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		sse, err := NewSSEWriter(w)
		if err == nil {
			sse.WriteEvent(EventPending, ws.Intake.Status()) //nolint:errcheck
			res := <-results
			if res.Err != nil {
				sse.WriteError(res.Err)
				return
			}
			sse.WriteEvent(EventRecord, res.Record) //nolint:errcheck
			return
		}
	}

	res := <-results
	if res.Err != nil {
		s.failure(w, res.Err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"record": res.Record,
		"status": ws.Intake.Status(),
	})
}
