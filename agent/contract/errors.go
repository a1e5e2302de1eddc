package contract

import "errors"

var (
	ErrModelInvoke   = errors.New("model invoke failed")
	ErrPromptMissing = errors.New("required prompt is missing")
	ErrValidation    = errors.New("validation failed")
	ErrToolArguments = errors.New("invalid tool arguments")
)

// Apology is the reply text recorded when an agent fails to answer.
func Apology(err error) string {
	return "Sorry, error occurred: " + err.Error()
}
