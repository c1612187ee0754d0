package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeTracker       ErrorType = "TRACKER"
	TypeProtocol      ErrorType = "PROTOCOL"
	TypeValidation    ErrorType = "VALIDATION"
	TypeStorage       ErrorType = "STORAGE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if detail, ok := e.Context["detail"].(string); ok && detail != "" {
			msg += fmt.Sprintf(" - %s", detail)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same type and message, so sentinels
// survive WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Run: ticketmate config set-key --provider <provider> --key <key>")

	ErrUnknownProvider = NewAppError(TypeConfiguration, "Unknown AI provider", nil).
				WithSuggestion("Supported providers: anthropic, gemini, openai. Run: ticketmate config set-llm --provider <provider>")

	ErrJiraNotConfigured = NewAppError(TypeConfiguration, "Jira connection is not configured", nil).
				WithSuggestion("Run: ticketmate config set-jira --url <base-url> --token <token>")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration file is invalid", nil).
				WithSuggestion("Fix or remove config.json in the ticketmate home directory")

	ErrUnsupportedLanguage = NewAppError(TypeConfiguration, "Unsupported language", nil).
				WithSuggestion("Supported languages: en, es, ru")
)

// AI errors
var (
	ErrQuotaExceeded = NewAppError(TypeAI, "AI quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your API quota")

	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrAPIKeyInvalid = NewAppError(TypeAI, "AI API key is invalid", nil).
				WithSuggestion("Generate a new key in your provider console, then run: ticketmate config set-key --provider <provider> --key <key>")

	ErrEmptyAIResponse = NewAppError(TypeAI, "AI returned an empty response", nil).
				WithSuggestion("This is likely a temporary issue, please try again")

	ErrTranscriptionUnsupported = NewAppError(TypeAI, "Voice input requires the gemini provider", nil).
					WithSuggestion("Configure a Gemini key: ticketmate config set-key --provider gemini --key <key>")
)

// Protocol errors
var (
	ErrEmptyClarification = NewAppError(TypeProtocol, "AI returned an empty list of clarifying questions", nil).
				WithSuggestion("Go back and rephrase the request, or try again")

	ErrTooManyRounds = NewAppError(TypeProtocol, "Clarification round limit reached", nil).
				WithSuggestion("Raise max_clarification_rounds in config.json or add more detail to the request")
)

// Validation errors
var (
	ErrBusy = NewAppError(TypeValidation, "A request is already in progress", nil).
		WithSuggestion("Wait for the current request to finish")

	ErrWrongStage = NewAppError(TypeValidation, "Action is not available at this stage", nil)

	ErrAnswerCount = NewAppError(TypeValidation, "Number of answers does not match number of questions", nil)

	ErrEmptyRequest = NewAppError(TypeValidation, "Task description is empty", nil).
			WithSuggestion("Describe the task with --text or --audio")

	ErrInvalidTeam = NewAppError(TypeValidation, "Team profile is invalid", nil).
			WithSuggestion("A team needs at least a name and a Jira project key")

	ErrTeamNotFound = NewAppError(TypeValidation, "Team not found", nil).
			WithSuggestion("List configured teams: ticketmate teams list")

	ErrDraftNotFound = NewAppError(TypeValidation, "Draft not found", nil).
				WithSuggestion("List saved drafts: ticketmate drafts list")

	ErrDraftNotReady = NewAppError(TypeValidation, "Draft has no finished ticket", nil).
				WithSuggestion("Resume the draft and complete it: ticketmate drafts resume <id>")

	ErrInvalidAudio = NewAppError(TypeValidation, "Audio file is not a WAV recording", nil).
			WithSuggestion("Record the task as a .wav file and pass it with --audio")
)

// Tracker errors
var (
	ErrTrackerAuth = NewAppError(TypeTracker, "Jira rejected the credentials", nil).
			WithSuggestion("Check the token (and email for Jira Cloud): ticketmate config set-jira")

	ErrTrackerPermission = NewAppError(TypeTracker, "Jira denied permission to create the issue", nil).
				WithSuggestion("Make sure your account can create issues in this project")

	ErrTrackerNotFound = NewAppError(TypeTracker, "Jira endpoint or project not found", nil).
				WithSuggestion("Verify the Jira base URL and the team's project key")

	ErrTrackerBadRequest = NewAppError(TypeTracker, "Jira rejected the issue", nil)

	ErrTrackerRequest = NewAppError(TypeTracker, "Jira request failed", nil).
				WithSuggestion("Check your network connection and the Jira base URL")
)

// Storage errors
var (
	ErrStorageRead  = NewAppError(TypeStorage, "Failed to read stored data", nil)
	ErrStorageWrite = NewAppError(TypeStorage, "Failed to write stored data", nil).
			WithSuggestion("Check permissions of the ticketmate home directory")
)

var (
	ErrInternal = NewAppError(TypeInternal, "Unexpected internal error", nil)
)
