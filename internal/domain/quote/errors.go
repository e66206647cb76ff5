package quote

import "github.com/rpggio/freightline/internal/apperr"

var (
	// ErrQuoteNotFound indicates the quote doesn't exist.
	ErrQuoteNotFound = apperr.New(apperr.KindNotFound, "QUOTE_NOT_FOUND", "quote not found")
	// ErrAlreadyApproved indicates the quote was already turned into a job.
	ErrAlreadyApproved = apperr.New(apperr.KindConflict, "QUOTE_ALREADY_APPROVED", "quote is already approved")
	// ErrConcurrentUpdate indicates the quote changed between read and write.
	ErrConcurrentUpdate = apperr.New(apperr.KindConflict, "CONCURRENT_UPDATE", "quote was modified concurrently; re-read and retry")
	// ErrInvalidInput indicates malformed quote input.
	ErrInvalidInput = apperr.New(apperr.KindValidation, "INVALID_QUOTE_INPUT", "invalid quote input")
)
