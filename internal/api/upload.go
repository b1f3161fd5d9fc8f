package api

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/MikeSquared-Agency/mangoconv/internal/export"
	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
)

// uploadField is the multipart field carrying call exports.
const uploadField = "files"

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="ru">
<head><meta charset="utf-8"><title>Записи разговоров в CSV</title></head>
<body>
<h1>Записи разговоров в CSV</h1>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="file" name="{{.Field}}" accept=".html,.htm" multiple required>
<select name="view">
{{range .Views}}<option value="{{.}}">{{.}}</option>
{{end}}</select>
<button type="submit">Преобразовать</button>
</form>
<p>Максимальный размер загрузки: {{.MaxMB}} МБ</p>
</body>
</html>
`))

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Field string
		Views []export.View
		MaxMB int64
	}{
		Field: uploadField,
		Views: []export.View{export.ViewHeaders, export.ViewMerged, export.ViewTurns, export.ViewWide},
		MaxMB: s.maxUpload >> 20,
	}
	if err := indexPage.Execute(w, data); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

// parseFailure is one uploaded file that produced no records.
type parseFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// upload converts the uploaded files into one CSV attachment.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	files, status, err := s.readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	view, err := export.ParseView(r.FormValue("view"), export.ViewHeaders)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	calls, failures := s.parseUploads(r, ingest.SurfaceWeb, files)
	if len(calls) == 0 {
		var msg strings.Builder
		msg.WriteString("No valid files were uploaded")
		for _, f := range failures {
			fmt.Fprintf(&msg, "\n%s: %s", f.Name, f.Error)
		}
		http.Error(w, msg.String(), http.StatusBadRequest)
		return
	}

	exported := make([]export.Call, len(calls))
	for i, c := range calls {
		exported[i] = export.Call{Name: c.Name, Result: c.Result}
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, view, exported); err != nil {
		s.logger.Error("render csv", "view", view, "error", err)
		http.Error(w, "failed to render CSV", http.StatusInternalServerError)
		return
	}

	if len(failures) > 0 {
		names := make([]string, len(failures))
		for i, f := range failures {
			names[i] = url.QueryEscape(f.Name)
		}
		w.Header().Set("X-Parse-Failures", strings.Join(names, ","))
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="conversations.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// readUpload returns the uploaded file headers, or an HTTP status and error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, errors.New("No files uploaded")
	}
	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		return nil, http.StatusBadRequest, errors.New("No files uploaded")
	}
	return files, 0, nil
}

// parseUploads parses each file in upload order. A failing file is reported
// and does not affect the others.
func (s *Server) parseUploads(r *http.Request, surface string, files []*multipart.FileHeader) ([]*ingest.Call, []parseFailure) {
	var (
		calls    []*ingest.Call
		failures []parseFailure
	)
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			failures = append(failures, parseFailure{Name: fh.Filename, Error: err.Error()})
			continue
		}
		call, err := s.svc.Parse(r.Context(), surface, fh.Filename, data)
		if err != nil {
			s.logger.Warn("failed to parse upload", "file", fh.Filename, "error", err)
			failures = append(failures, parseFailure{Name: fh.Filename, Error: err.Error()})
			continue
		}
		calls = append(calls, call)
	}
	return calls, failures
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
