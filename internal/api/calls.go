package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
	"github.com/MikeSquared-Agency/mangoconv/internal/store"
)

// CallReader loads stored calls.
type CallReader interface {
	GetCall(ctx context.Context, id uuid.UUID) (*store.CallRow, error)
}

// CallResponse is one parsed document in the JSON API.
type CallResponse struct {
	Name    string                   `json:"name"`
	ID      string                   `json:"id,omitempty"`
	Charset string                   `json:"charset"`
	Header  callparse.CallHeader     `json:"header"`
	Turns   []callparse.DialogueTurn `json:"turns"`
	Stats   callparse.Stats          `json:"stats"`
}

// ParseResponse is returned by POST /api/v1/calls.
type ParseResponse struct {
	Calls    []CallResponse `json:"calls"`
	Failures []parseFailure `json:"failures"`
}

// StoredCallResponse is returned by GET /api/v1/calls/{id}.
type StoredCallResponse struct {
	ID         string                   `json:"id"`
	SourceName string                   `json:"source_name"`
	Header     callparse.CallHeader     `json:"header"`
	Turns      []callparse.DialogueTurn `json:"turns"`
	CreatedAt  time.Time                `json:"created_at"`
}

const defaultDocumentName = "document.html"

// parseCalls handles POST /api/v1/calls. The body is either a multipart
// upload with one or more "files" parts, or a single raw HTML document
// named by the "name" query parameter.
func (s *Server) parseCalls(w http.ResponseWriter, r *http.Request) {
	var (
		calls    []*ingest.Call
		failures []parseFailure
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		files, status, err := s.readUpload(w, r)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		calls, failures = s.parseUploads(r, ingest.SurfaceAPI, files)
	} else {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = defaultDocumentName
		}
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if len(data) == 0 {
			writeError(w, http.StatusBadRequest, "empty request body")
			return
		}
		call, err := s.svc.Parse(r.Context(), ingest.SurfaceAPI, name, data)
		if err != nil {
			failures = append(failures, parseFailure{Name: name, Error: err.Error()})
		} else {
			calls = append(calls, call)
		}
	}

	resp := ParseResponse{Calls: make([]CallResponse, 0, len(calls)), Failures: failures}
	if resp.Failures == nil {
		resp.Failures = []parseFailure{}
	}
	for _, c := range calls {
		cr := CallResponse{
			Name:    c.Name,
			Charset: c.Charset,
			Header:  c.Result.Header,
			Turns:   c.Result.Turns,
			Stats:   c.Result.Stats,
		}
		if c.ID != uuid.Nil {
			cr.ID = c.ID.String()
		}
		if cr.Turns == nil {
			cr.Turns = []callparse.DialogueTurn{}
		}
		resp.Calls = append(resp.Calls, cr)
	}

	status := http.StatusOK
	if len(calls) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// getCall handles GET /api/v1/calls/{id}.
func (s *Server) getCall(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid call id")
		return
	}

	call, err := s.calls.GetCall(r.Context(), id)
	if errors.Is(err, store.ErrCallNotFound) {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}
	if err != nil {
		s.logger.Error("get call", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load call")
		return
	}

	turns := call.Turns
	if turns == nil {
		turns = []callparse.DialogueTurn{}
	}
	writeJSON(w, http.StatusOK, StoredCallResponse{
		ID:         call.ID.String(),
		SourceName: call.SourceName,
		Header:     call.Header,
		Turns:      turns,
		CreatedAt:  call.CreatedAt,
	})
}
