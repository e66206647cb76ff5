package sequence

import "github.com/rpggio/freightline/internal/apperr"

var (
	// ErrUnknownMode indicates a transport mode that cannot be normalized.
	ErrUnknownMode = apperr.New(apperr.KindValidation, "UNKNOWN_MODE", "unknown transport mode")
	// ErrUnknownTrade indicates a trade direction that cannot be normalized.
	ErrUnknownTrade = apperr.New(apperr.KindValidation, "UNKNOWN_TRADE", "unknown trade direction")
	// ErrInvalidYear indicates a year outside the supported range.
	ErrInvalidYear = apperr.New(apperr.KindValidation, "INVALID_YEAR", "year must be two or four digits")
	// ErrEmptyKey indicates an allocation without a key.
	ErrEmptyKey = apperr.New(apperr.KindValidation, "EMPTY_KEY", "sequence key is required")
	// ErrInvalidIdentifier indicates a malformed business identifier.
	ErrInvalidIdentifier = apperr.New(apperr.KindValidation, "INVALID_IDENTIFIER", "malformed identifier")
)
