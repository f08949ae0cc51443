// Package core provides the business logic for two-phase submissions.
//
// This package is independent of any transport layer. It can be used by web
// handlers, CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around two components:
//
//   - Registry: an in-memory keyed store of [SubmissionRecord] values. A
//     record is created from validated metadata and later bound to exactly
//     one uploaded filename.
//   - Validator: consumes a multipart part sequence for a registered id and
//     decides whether it is a valid single-file upload.
//
// # Submission Flow
//
//  1. Client submits metadata; [Registry.Create] validates it and returns an id
//  2. Client streams a multipart body for that id
//  3. [Validator.Consume] walks the parts, draining every one of them
//  4. On success the filename is bound via [Registry.Bind]
//
// A record appears in [Registry.ListUploaded] only after it has been bound.
// Binding happens at most once; a second bind fails with [ErrAlreadyBound].
//
// # Upload Protocol
//
// The validator runs a small state machine (idle, receiving, succeeded,
// failed). Every part must use the field name "file" and carry a filename,
// and at most one such part may appear. Violations mark the stream as failed
// but parsing continues until the stream is exhausted, so the transport is
// left in a consistent state. Framing or I/O errors end the stream
// immediately with [ErrMalformedStream].
//
// # Error Handling
//
// Failures are returned as sentinel errors (or [*ValidationError]) and can be
// tested with errors.Is / errors.As. [MapError] converts any of them to a
// user-facing message with a support code:
//
//   - VAL001: Invalid submission metadata
//   - SUB001-SUB002: Unknown or already completed submission
//   - UPL001-UPL005: Upload stream failures
//   - RATE001: Rate limiting
package core
