package job

import (
	"strings"
	"time"
)

// FinalStage is the last lifecycle stage. Reaching it completes the job.
const FinalStage = 10

// StageNames is the fixed lifecycle template, indexed from stage 1.
var StageNames = [FinalStage]string{
	"Job Created",
	"Documents Collected",
	"Booking Confirmed",
	"Cargo Received",
	"Export Customs Cleared",
	"Departed Origin",
	"In Transit",
	"Arrived at Destination",
	"Import Customs Cleared",
	"Delivered",
}

// StageName returns the name of stage n, or "" when n is out of range.
func StageName(n int) string {
	if n < 1 || n > FinalStage {
		return ""
	}
	return StageNames[n-1]
}

// Initialize applies the stage template and required document set to j.
// Stage 1 starts completed and the job becomes active at stage 2. Any
// existing stages and documents are replaced.
func Initialize(j *Job, documentNames []string, now time.Time) error {
	docs, err := buildDocuments(documentNames)
	if err != nil {
		return err
	}
	at := now.UTC()
	stages := make([]Stage, FinalStage)
	for i := range stages {
		stages[i] = Stage{Number: i + 1, Name: StageNames[i]}
	}
	stages[0].Completed = true
	stages[0].CompletedAt = &at

	j.Stages = stages
	j.Documents = docs
	j.CurrentStage = 2
	j.Status = StatusActive
	return nil
}

// ValidateDocuments checks that every required document name is non-blank.
func ValidateDocuments(names []string) error {
	_, err := buildDocuments(names)
	return err
}

func buildDocuments(names []string) ([]Document, error) {
	seen := make(map[string]struct{}, len(names))
	docs := make([]Document, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, ErrInvalidDocument
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		docs = append(docs, Document{Name: name})
	}
	return docs, nil
}

// UnsatisfiedDocuments lists the names of documents that block advancement,
// in document order.
func UnsatisfiedDocuments(j *Job) []string {
	var names []string
	for _, d := range j.Documents {
		if !d.Satisfied() {
			names = append(names, d.Name)
		}
	}
	return names
}

// CanAdvance reports whether j may move to the next stage.
func CanAdvance(j *Job) bool {
	return j.Status == StatusActive && j.CurrentStage < FinalStage && len(UnsatisfiedDocuments(j)) == 0
}

// Advance completes the current stage and moves j to the next one. Entering
// the final stage also completes it and marks the job completed. At the final
// stage Advance does nothing and reports false.
func Advance(j *Job, now time.Time) (bool, error) {
	if j.Status == StatusNew || len(j.Stages) != FinalStage {
		return false, ErrNotInitialized
	}
	if j.CurrentStage >= FinalStage || j.Status == StatusCompleted {
		return false, nil
	}
	if pending := UnsatisfiedDocuments(j); len(pending) > 0 {
		return false, &GateError{JobID: j.ID, CurrentStage: j.CurrentStage, Unsatisfied: pending}
	}

	at := now.UTC()
	completeStage(j, j.CurrentStage, at)
	j.CurrentStage++
	if j.CurrentStage == FinalStage {
		completeStage(j, FinalStage, at)
		j.Status = StatusCompleted
	}
	return true, nil
}

func completeStage(j *Job, n int, at time.Time) {
	s := &j.Stages[n-1]
	if s.Completed {
		return
	}
	s.Completed = true
	s.CompletedAt = &at
}

// ConfirmDocument marks the named document confirmed, adding it to the
// required set when absent. Confirming twice keeps the first confirmation.
func ConfirmDocument(j *Job, name string, actor *string, now time.Time) (Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Document{}, ErrInvalidDocument
	}
	for i := range j.Documents {
		d := &j.Documents[i]
		if d.Name != name {
			continue
		}
		if !d.Confirmed {
			at := now.UTC()
			d.Confirmed = true
			d.ConfirmedAt = &at
			d.ConfirmedBy = actor
		}
		return *d, nil
	}
	at := now.UTC()
	d := Document{Name: name, Confirmed: true, ConfirmedAt: &at, ConfirmedBy: actor}
	j.Documents = append(j.Documents, d)
	return d, nil
}
