package core

import (
	"io"
	"mime/multipart"
)

// SubmissionInput is the metadata supplied by a client when it registers a
// pending upload.
type SubmissionInput struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Height *int   `json:"height,omitempty" validate:"omitempty,min=1,max=500"`
}

// SubmissionRecord is one registered submission.
// File stays nil until an upload has been accepted for the record.
type SubmissionRecord struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Height *int    `json:"height,omitempty"`
	File   *string `json:"file"`
}

// Bound reports whether an upload has been accepted for the record.
func (r SubmissionRecord) Bound() bool {
	return r.File != nil
}

// RegistryStats is a snapshot of registry occupancy.
type RegistryStats struct {
	Total int `json:"total"`
	Bound int `json:"bound"`
}

// PartReader yields the parts of a multipart stream in arrival order.
// NextPart returns io.EOF once the closing boundary has been read.
// Satisfied by *multipart.Reader.
type PartReader interface {
	NextPart() (*multipart.Part, error)
}

// UploadResult describes an accepted upload.
type UploadResult struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Parts    int    `json:"parts"`
	Bytes    int64  `json:"bytes"`
}

// FileFieldName is the multipart field that must carry the uploaded file.
const FileFieldName = "file"

// countingReader counts bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
