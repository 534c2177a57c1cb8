package server

import (
	"fmt"

	"github.com/RaphScript0/mini-engine/pkg/problem"
)

// Request body limits. Batches and documents outside these bounds are
// rejected before the engine is invoked.
const (
	maxBatchSize = 1000
	maxIDLength  = 256
	maxTextBytes = 200000
)

// validationError carries the problem code for a request-level failure.
type validationError struct {
	code   problem.Code
	detail string
}

func (e *validationError) Error() string { return e.detail }

// validateIngestBatch checks batch-level constraints. Per-document
// constraints are handled by validateDocument so a bad document fails
// individually instead of rejecting the batch.
func validateIngestBatch(req *ingestRequest) *validationError {
	if len(req.Documents) == 0 {
		return &validationError{
			code:   problem.CodeUnprocessableEntity,
			detail: "documents must contain at least one entry",
		}
	}
	if len(req.Documents) > maxBatchSize {
		return &validationError{
			code:   problem.CodeUnprocessableEntity,
			detail: fmt.Sprintf("documents exceeds the maximum batch size of %d", maxBatchSize),
		}
	}
	if req.Options != nil {
		switch req.Options.OnDuplicate {
		case "", onDuplicateReplace, onDuplicateSkip:
		default:
			return &validationError{
				code:   problem.CodeInvalidArgument,
				detail: fmt.Sprintf("options.onDuplicate must be %q or %q", onDuplicateReplace, onDuplicateSkip),
			}
		}
	}
	return nil
}

// validateDocument returns the failure message for one document, or "".
func validateDocument(doc documentPayload) string {
	if doc.ID == "" {
		return "id is required"
	}
	if len(doc.ID) > maxIDLength {
		return fmt.Sprintf("id must be at most %d bytes", maxIDLength)
	}
	if doc.Text == "" {
		return "text is required"
	}
	if len(doc.Text) > maxTextBytes {
		return fmt.Sprintf("text must be at most %d bytes", maxTextBytes)
	}
	return ""
}

// validateSearch checks POST /search constraints against the configured
// topK ceiling.
func validateSearch(req *searchRequest, maxTopK int) *validationError {
	if req.TopK != nil && (*req.TopK < 1 || *req.TopK > maxTopK) {
		return &validationError{
			code:   problem.CodeInvalidArgument,
			detail: fmt.Sprintf("topK must be between 1 and %d", maxTopK),
		}
	}
	switch req.Mode {
	case "", modeFulltext, modePrefix:
	default:
		return &validationError{
			code:   problem.CodeInvalidArgument,
			detail: fmt.Sprintf("mode must be %q or %q", modeFulltext, modePrefix),
		}
	}
	return nil
}
