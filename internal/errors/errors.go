package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the domain error type.
type Error struct {
	Code    Code              // Machine-readable error code
	Message string            // User-facing message
	Fields  map[string]string // Per-field validation messages
	Cause   error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a VALIDATION_ERROR with optional per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// InvalidParameter reports a malformed path or query parameter.
func InvalidParameter(name string) *Error {
	return &Error{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("Invalid parameter: %s", name),
	}
}

// As extracts a *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Sentinels compared with errors.Is.
var (
	ErrTeamNotFound          = New(CodeTeamNotFound, "Team not found")
	ErrTeamNameAlreadyExists = New(CodeTeamNameAlreadyExists, "Team name already exists")
	ErrPlayerAlreadyInTeam   = New(CodePlayerAlreadyInTeam, "Player already in team")
	ErrPlayerNotInTeam       = New(CodePlayerNotInTeam, "Player not in team")

	ErrTournamentNotFound      = New(CodeTournamentNotFound, "Tournament not found")
	ErrInvalidTournamentDate   = New(CodeInvalidTournamentDate, "Start date must be before end date")
	ErrTournamentNotOpen       = New(CodeTournamentNotOpen, "Tournament is not open for registration")
	ErrTournamentFull          = New(CodeTournamentFull, "Tournament has reached maximum number of teams")
	ErrTeamAlreadyInTournament = New(CodeTeamAlreadyInTournament, "Team is already registered in tournament")
	ErrTeamNotInTournament     = New(CodeTeamNotInTournament, "Team is not registered in tournament")

	ErrMatchNotFound        = New(CodeMatchNotFound, "Match not found")
	ErrSameTeamMatch        = New(CodeSameTeamMatch, "A team cannot play against itself")
	ErrTeamsNotInTournament = New(CodeTeamsNotInTournament, "Both teams must be registered in the tournament")
	ErrInvalidMatchResult   = New(CodeInvalidMatchResult, "Invalid match result")

	ErrUserNotFound          = New(CodeUserNotFound, "User not found")
	ErrUsernameAlreadyExists = New(CodeUsernameAlreadyExists, "Username already exists")
	ErrEmailAlreadyExists    = New(CodeEmailAlreadyExists, "Email already exists")
	ErrUnauthorizedOperation = New(CodeUnauthorizedOperation, "Unauthorized operation")

	ErrEmptySearchKeyword = New(CodeEmptySearchKeyword, "Search keyword cannot be empty")

	ErrAccessDenied         = New(CodeAccessDenied, "Access denied")
	ErrAuthenticationFailed = New(CodeAuthenticationFailed, "Invalid username or password")
	ErrInternal             = New(CodeInternal, "An unexpected error occurred")
)
