// Package services holds the application logic of the call analysis service:
// the upload pipeline, the demo generator, and result loading.
//
// Errors here are service-level. Translation into HTTP status codes and user
// facing messages is done by the handlers.
package services

import (
	"errors"
	"fmt"
)

// Validation errors. They are returned before any state changes.
var (
	// ErrInvalidFileType is returned for uploads whose content type is not audio/*.
	ErrInvalidFileType = errors.New("please upload an audio file")

	// ErrEmptyUpload is returned for uploads without data.
	ErrEmptyUpload = errors.New("uploaded file is empty")
)

// ErrPipelineBusy is returned when a job is already in flight.
var ErrPipelineBusy = errors.New("another recording is being processed")

// Not-found errors for the result view.
var (
	ErrRecordingNotFound  = errors.New("recording not found")
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrAnalysisNotFound   = errors.New("analysis not found")
)

// FailureMessage is what users see when a pipeline stage fails.
const FailureMessage = "Error processing audio. Please try again."

// StageError reports the pipeline stage that failed and the underlying cause.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }
