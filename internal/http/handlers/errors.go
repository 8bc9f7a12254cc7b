// Package handlers defines the error codes returned in ErrorResponse.code.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror the HTTP status, domain codes name
// the pipeline outcome.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "processing_failed",
//	  "message": "Error processing audio. Please try again.",
//	  "stage": "transcribing"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidFileType  = "invalid_file_type"
	ErrCodeEmptyUpload      = "empty_upload"
	ErrCodeUploadTooLarge   = "upload_too_large"
	ErrCodePipelineBusy     = "pipeline_busy"
	ErrCodeProcessingFailed = "processing_failed"
	ErrCodeDemoFailed       = "demo_failed"
)
