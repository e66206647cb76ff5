package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/freightline/internal/apperr"
	"github.com/rpggio/freightline/internal/domain/job"
)

// APIError is the payload of a failed tool call.
type APIError struct {
	Kind    apperr.Kind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError converts a service error into its tool payload. Errors outside the
// taxonomy become internal errors.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var gate *job.GateError
	if errors.As(err, &gate) {
		return &APIError{
			Kind:    apperr.KindConflict,
			Code:    job.ErrGateUnmet.Code,
			Message: job.ErrGateUnmet.Message,
			Details: map[string]any{
				"job_id":        gate.JobID,
				"current_stage": gate.CurrentStage,
				"unsatisfied":   gate.Unsatisfied,
			},
		}
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		code := appErr.Code
		if code == "" {
			code = string(appErr.Kind)
		}
		return &APIError{
			Kind:    appErr.Kind,
			Code:    code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}

	return &APIError{Kind: apperr.KindInternal, Code: "INTERNAL", Message: err.Error()}
}

var errUnknownTool = apperr.New(apperr.KindValidation, "UNKNOWN_TOOL", "unknown tool")

var errInvalidParams = apperr.New(apperr.KindValidation, "INVALID_PARAMS", "invalid tool arguments")
