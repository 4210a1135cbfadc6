package processor

import "strings"

// Command identifies a recognized chat command.
type Command int

// Recognized commands, in resolution priority order.
const (
	CommandNone Command = iota
	CommandHelp
	CommandReport
	CommandRegister
)

// String returns the command name for logging.
func (c Command) String() string {
	switch c {
	case CommandHelp:
		return "help"
	case CommandReport:
		return "report"
	case CommandRegister:
		return "register"
	default:
		return "none"
	}
}

// RegistrationPhrase is the exact message a user sends to register.
const RegistrationPhrase = "quiero registrarme a la aplicacion"

// classifiers is the ordered predicate list for command resolution:
// help > report > registration. Each predicate receives the lowercased,
// trimmed message. Matching is intentionally literal; free-text
// understanding is the extractor's job, not the classifier's.
var classifiers = []struct {
	command Command
	matches func(msg string) bool
}{
	{CommandHelp, func(msg string) bool { return msg == "/help" }},
	{CommandReport, func(msg string) bool { return msg == "/report" }},
	{CommandRegister, func(msg string) bool { return msg == RegistrationPhrase }},
}

// ClassifyCommand determines whether a message is a recognized command.
func ClassifyCommand(message string) Command {
	msg := strings.ToLower(strings.TrimSpace(message))
	for _, c := range classifiers {
		if c.matches(msg) {
			return c.command
		}
	}
	return CommandNone
}

// IsRegistrationAttempt reports whether a message looks like a registration
// request without matching the exact phrase. The stem match covers both
// "register" and the Spanish "registrarme"/"registrarse".
func IsRegistrationAttempt(message string) bool {
	return strings.Contains(strings.ToLower(message), "registr")
}
