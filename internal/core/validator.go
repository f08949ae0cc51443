package core

// validator.go implements the upload stream protocol.
//
// A stream is consumed as a pull loop over NextPart. Each part moves the
// session through a small state machine:
//
//	idle -> receiving -> succeeded
//	                  -> failed
//
// A part is acceptable only if it uses the "file" field and carries a
// filename, and only one such part may appear. A bad part marks the session
// failed, but the loop keeps draining parts until the closing boundary so the
// connection is left in a known state. Framing and I/O errors abort the loop
// at once. The outcome is decided only at end of stream (or on error), and
// the registry is touched only when the outcome is success.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/submitbox/internal/logging"
)

// uploadState is the position of a session in the upload protocol.
type uploadState int

const (
	stateIdle uploadState = iota
	stateReceiving
	stateSucceeded
	stateFailed
)

func (s uploadState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateReceiving:
		return "receiving"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// uploadSession holds the per-stream parsing state.
type uploadSession struct {
	state      uploadState
	hasContent bool
	failed     bool
	fileParts  int
	filename   string
	parts      int
	bytes      int64
	reason     string
}

// observe records one part. Only the header fields are inspected here;
// the caller drains the body.
func (s *uploadSession) observe(fieldName, fileName string) {
	s.state = stateReceiving
	s.hasContent = true
	s.parts++

	switch {
	case fieldName != FileFieldName:
		s.fail(fmt.Sprintf("unexpected field %q", fieldName))
	case fileName == "":
		s.fail("file part has no filename")
	default:
		s.fileParts++
		if s.fileParts > 1 {
			s.fail("more than one file part")
			return
		}
		s.filename = usableFilename(fileName)
	}
}

// usableFilename returns name, or "" when it cannot serve as a filename on
// its own (path navigation or blank). The caller substitutes a placeholder.
func usableFilename(name string) string {
	switch strings.TrimSpace(name) {
	case "", ".", "..", "/", "\\":
		return ""
	}
	return name
}

// fail marks the session failed, keeping the first reason.
func (s *uploadSession) fail(reason string) {
	if !s.failed {
		s.reason = reason
	}
	s.failed = true
}

// decide resolves the terminal outcome once the stream has closed cleanly.
func (s *uploadSession) decide() error {
	if s.failed || !s.hasContent {
		s.state = stateFailed
		if s.reason == "" {
			s.reason = "no parts received"
		}
		return fmt.Errorf("%w: %s", ErrInvalidPayload, s.reason)
	}
	s.state = stateSucceeded
	return nil
}

// Validator consumes multipart upload streams and binds accepted files.
type Validator struct {
	registry *Registry
	names    NameGenerator
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithNameGenerator replaces the placeholder filename source.
func WithNameGenerator(gen NameGenerator) ValidatorOption {
	return func(v *Validator) {
		v.names = gen
	}
}

// NewValidator creates a validator bound to registry.
func NewValidator(registry *Registry, opts ...ValidatorOption) *Validator {
	v := &Validator{
		registry: registry,
		names:    NewCounterNames(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Consume reads every part from parts and decides whether the stream is a
// valid single-file upload for id.
//
// Returns ErrUnknownSubmission if id is not registered, ErrAlreadyBound if the
// submission already has a file, ErrInvalidPayload if the stream held no
// acceptable file part, and ErrMalformedStream (or ErrPayloadTooLarge) on
// framing, transport or cancellation errors. On success the filename has
// been bound to the submission.
func (v *Validator) Consume(ctx context.Context, id string, parts PartReader) (UploadResult, error) {
	logger := logging.WithFields(ctx, "upload_id", id)
	session := &uploadSession{state: stateIdle}

	rec, ok := v.registry.Get(id)
	if !ok {
		uploadOutcomes.WithLabelValues(outcomeUnknownID).Inc()
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnknownSubmission, id)
	}
	if rec.Bound() {
		uploadOutcomes.WithLabelValues(outcomeAlreadyBound).Inc()
		return UploadResult{}, fmt.Errorf("%w: %s", ErrAlreadyBound, id)
	}

	for {
		if err := ctx.Err(); err != nil {
			return v.abort(logger, session, err)
		}

		part, err := parts.NextPart()
		// Only a bare io.EOF means the closing boundary was read. A stream cut
		// short surfaces as a wrapped EOF and is a framing error.
		if err == io.EOF {
			break
		}
		if err != nil {
			return v.abort(logger, session, err)
		}

		session.observe(part.FormName(), part.FileName())

		body := &countingReader{r: part}
		_, copyErr := io.Copy(io.Discard, body)
		part.Close()
		session.bytes += body.n
		if copyErr != nil {
			return v.abort(logger, session, copyErr)
		}
	}

	if !v.registry.Exists(id) {
		session.state = stateFailed
		uploadOutcomes.WithLabelValues(outcomeUnknownID).Inc()
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnknownSubmission, id)
	}

	if err := session.decide(); err != nil {
		uploadOutcomes.WithLabelValues(outcomeInvalidPayload).Inc()
		logger.Info("upload rejected",
			"state", session.state.String(),
			"parts", session.parts,
			"reason", session.reason,
		)
		return UploadResult{}, err
	}

	filename := session.filename
	if filename == "" {
		filename = v.names.Next()
	}

	if err := v.registry.Bind(id, filename); err != nil {
		if errors.Is(err, ErrAlreadyBound) {
			uploadOutcomes.WithLabelValues(outcomeAlreadyBound).Inc()
		} else {
			uploadOutcomes.WithLabelValues(outcomeUnknownID).Inc()
		}
		return UploadResult{}, fmt.Errorf("bind %s: %w", id, err)
	}

	uploadOutcomes.WithLabelValues(outcomeSucceeded).Inc()
	uploadBytes.Observe(float64(session.bytes))
	logger.Info("upload accepted",
		"filename", filename,
		"parts", session.parts,
		"bytes", session.bytes,
	)

	return UploadResult{
		ID:       id,
		Filename: filename,
		Parts:    session.parts,
		Bytes:    session.bytes,
	}, nil
}

// abort ends the session on a transport, framing or cancellation error.
func (v *Validator) abort(logger *slog.Logger, session *uploadSession, cause error) (UploadResult, error) {
	session.state = stateFailed

	var tooLarge *http.MaxBytesError
	if errors.As(cause, &tooLarge) {
		uploadOutcomes.WithLabelValues(outcomeTooLarge).Inc()
		logger.Warn("upload exceeded size limit", "limit", tooLarge.Limit, "parts", session.parts)
		return UploadResult{}, fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, tooLarge.Limit)
	}

	uploadOutcomes.WithLabelValues(outcomeMalformedStream).Inc()
	logger.Warn("upload stream aborted", "error", cause, "parts", session.parts)
	return UploadResult{}, fmt.Errorf("%w: %w", ErrMalformedStream, cause)
}
