package orchestratornode

import "strings"

// ResetReply is returned instead of an agent answer when a conversation is
// restarted.
const ResetReply = "Thanks for visiting Ghumloo 😊 New conversation started. How can I help you today?"

var exitWords = map[string]struct{}{
	"bye":    {},
	"exit":   {},
	"quit":   {},
	"clear":  {},
	"reset":  {},
	"ok bye": {},
}

// IsExitCommand reports whether the whole utterance is an exit word.
// "bye for now" is not.
func IsExitCommand(text string) bool {
	_, ok := exitWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
