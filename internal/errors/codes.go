// Package errors provides the domain error taxonomy shared by services and the API.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// Team errors
	CodeTeamNotFound          Code = "TEAM_NOT_FOUND"
	CodeTeamNameAlreadyExists Code = "TEAM_NAME_ALREADY_EXISTS"
	CodePlayerAlreadyInTeam   Code = "PLAYER_ALREADY_IN_TEAM"
	CodePlayerNotInTeam       Code = "PLAYER_NOT_IN_TEAM"

	// Tournament errors
	CodeTournamentNotFound      Code = "TOURNAMENT_NOT_FOUND"
	CodeInvalidTournamentDate   Code = "INVALID_TOURNAMENT_DATE"
	CodeTournamentNotOpen       Code = "TOURNAMENT_NOT_OPEN"
	CodeTournamentFull          Code = "TOURNAMENT_FULL"
	CodeTeamAlreadyInTournament Code = "TEAM_ALREADY_IN_TOURNAMENT"
	CodeTeamNotInTournament     Code = "TEAM_NOT_IN_TOURNAMENT"

	// Match errors
	CodeMatchNotFound        Code = "MATCH_NOT_FOUND"
	CodeSameTeamMatch        Code = "SAME_TEAM_MATCH"
	CodeTeamsNotInTournament Code = "TEAMS_NOT_IN_TOURNAMENT"
	CodeInvalidMatchResult   Code = "INVALID_MATCH_RESULT"

	// User errors
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeUsernameAlreadyExists Code = "USERNAME_ALREADY_EXISTS"
	CodeEmailAlreadyExists    Code = "EMAIL_ALREADY_EXISTS"
	CodeUnauthorizedOperation Code = "UNAUTHORIZED_OPERATION"

	// Request errors
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeEmptySearchKeyword Code = "EMPTY_SEARCH_KEYWORD"
	CodeInvalidParameter   Code = "INVALID_PARAMETER"

	// Security errors
	CodeAccessDenied         Code = "ACCESS_DENIED"
	CodeAuthenticationFailed Code = "AUTHENTICATION_FAILED"

	CodeInternal Code = "INTERNAL_ERROR"
)

// HTTPStatus maps the code to the response status used by the API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeTeamNotFound, CodeTournamentNotFound, CodeMatchNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeTeamNameAlreadyExists, CodeUsernameAlreadyExists, CodeEmailAlreadyExists,
		CodePlayerAlreadyInTeam, CodeTeamAlreadyInTournament,
		CodeTournamentFull, CodeTournamentNotOpen:
		return http.StatusConflict
	case CodeUnauthorizedOperation, CodeAccessDenied:
		return http.StatusForbidden
	case CodeAuthenticationFailed:
		return http.StatusUnauthorized
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
