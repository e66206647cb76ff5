package job

import "github.com/rpggio/freightline/internal/apperr"

var (
	// ErrJobNotFound indicates the job doesn't exist.
	ErrJobNotFound = apperr.New(apperr.KindNotFound, "JOB_NOT_FOUND", "job not found")
	// ErrAlreadyInitialized indicates the stage template was already applied.
	ErrAlreadyInitialized = apperr.New(apperr.KindConflict, "JOB_ALREADY_INITIALIZED", "job is already initialized")
	// ErrNotInitialized indicates an operation that needs stages on a new job.
	ErrNotInitialized = apperr.New(apperr.KindConflict, "JOB_NOT_INITIALIZED", "job has not been initialized")
	// ErrGateUnmet indicates required documents are still outstanding.
	ErrGateUnmet = apperr.New(apperr.KindConflict, "DOCUMENTS_OUTSTANDING", "required documents are not confirmed")
	// ErrStageRace indicates another actor advanced or changed the job concurrently.
	ErrStageRace = apperr.New(apperr.KindConflict, "CONCURRENT_UPDATE", "job was modified concurrently; re-read and retry")
	// ErrInvalidDocument indicates a blank or malformed document name.
	ErrInvalidDocument = apperr.New(apperr.KindValidation, "INVALID_DOCUMENT", "document name is required")
	// ErrInvalidInput indicates malformed job input.
	ErrInvalidInput = apperr.New(apperr.KindValidation, "INVALID_JOB_INPUT", "invalid job input")
)

// GateError lists the documents blocking a stage advance.
type GateError struct {
	JobID        string
	CurrentStage int
	Unsatisfied  []string
}

func (e *GateError) Error() string {
	return ErrGateUnmet.Message
}

// Unwrap exposes the conflict kind to errors.Is and apperr.KindOf.
func (e *GateError) Unwrap() error {
	return ErrGateUnmet.WithDetails(map[string]any{
		"job_id":        e.JobID,
		"current_stage": e.CurrentStage,
		"unsatisfied":   e.Unsatisfied,
	})
}
