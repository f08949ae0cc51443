package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/submitbox/internal/core"
	"github.com/JonMunkholm/submitbox/internal/logging"
)

// maxSubmitBodySize caps the JSON metadata body of POST /submit.
const maxSubmitBodySize = 64 << 10

// submitResponse is returned by POST /submit.
type submitResponse struct {
	UploadID string `json:"uploadId"`
}

// uploadResponse is returned by POST /upload/{id}.
type uploadResponse struct {
	Result bool `json:"result"`
}

// healthResponse is returned by GET /healthz.
type healthResponse struct {
	Status      string                   `json:"status"`
	Submissions core.RegistryStats       `json:"submissions"`
	Uploads     core.UploadLimiterStatus `json:"uploads"`
}

// handleListData returns every submission that has an accepted upload.
func (s *Server) handleListData(w http.ResponseWriter, r *http.Request) {
	records := s.registry.ListUploaded()
	if records == nil {
		records = []core.SubmissionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleSubmit registers submission metadata and returns the upload id.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBodySize)

	var in core.SubmissionInput
	if err := decodeSubmission(r.Body, &in); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	id, err := s.registry.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{UploadID: id})
}

// decodeSubmission strictly decodes a single JSON object. Decoding problems
// are reported as validation errors so clients see a 400 with VAL001.
func decodeSubmission(body io.Reader, in *core.SubmissionInput) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(in); err != nil {
		return &core.ValidationError{Fields: []core.FieldError{describeDecodeError(err)}}
	}
	if dec.More() {
		return &core.ValidationError{Fields: []core.FieldError{{Field: "body", Message: "must contain a single JSON object"}}}
	}
	return nil
}

func describeDecodeError(err error) core.FieldError {
	var typeErr *json.UnmarshalTypeError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &typeErr):
		return core.FieldError{Field: typeErr.Field, Message: fmt.Sprintf("must be of type %s", typeErr.Type)}
	case errors.As(err, &tooLarge):
		return core.FieldError{Field: "body", Message: fmt.Sprintf("must not exceed %d bytes", tooLarge.Limit)}
	case errors.Is(err, io.EOF):
		return core.FieldError{Field: "body", Message: "is required"}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return core.FieldError{Field: field, Message: "is not allowed"}
	default:
		return core.FieldError{Field: "body", Message: "must be valid JSON"}
	}
}

// handleUpload consumes a multipart stream and binds its file to the
// submission named by the {id} path parameter.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := parseUploadID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	if err := s.limiter.Acquire(ctx); err != nil {
		logging.WithFields(ctx, "upload_id", id).Warn("upload slot unavailable",
			"active", s.limiter.ActiveCount(),
			"max", s.limiter.MaxConcurrent(),
		)
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.limiter.Release()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxPayloadSize)

	mr, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrNotMultipart, err), 0)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrMalformedStream, err), 0)
		return
	}

	if _, err := s.validator.Consume(ctx, id, mr); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Result: true})
}

// parseUploadID accepts only the canonical 36-character UUID form.
func parseUploadID(raw string) (string, error) {
	if len(raw) != 36 {
		return "", fmt.Errorf("%w: %q is not a valid id", core.ErrUnknownSubmission, raw)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a valid id", core.ErrUnknownSubmission, raw)
	}
	return parsed.String(), nil
}

// handleHealth reports liveness plus registry and upload slot occupancy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Submissions: s.registry.Stats(),
		Uploads:     s.limiter.Status(),
	})
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
