package relay

const (
	DefaultWelcomeMessage = "Welcome to support bot! Please send your complete request in a single message, " +
		"and we'll forward it to our team. This helps us process your request efficiently."

	DefaultConfirmationMessage = "Thanks! We've received your request and will respond within a few hours. " +
		"There's no need to send multiple messages for the same issue. If you'd like to add " +
		"more information, please include everything in one detailed message."
)

// Config is built once at startup and passed by value into both relay
// directions. There is no other shared state.
type Config struct {
	StaffChatID         int64
	WelcomeMessage      string
	ConfirmationMessage string
}

func (c Config) withDefaults() Config {
	if c.WelcomeMessage == "" {
		c.WelcomeMessage = DefaultWelcomeMessage
	}
	if c.ConfirmationMessage == "" {
		c.ConfirmationMessage = DefaultConfirmationMessage
	}
	return c
}
