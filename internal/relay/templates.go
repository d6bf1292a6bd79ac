package relay

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages are the user-facing text templates. They are substitution points,
// not logic.
type Messages struct {
	WelcomeMessage      string `yaml:"welcome_message"`
	ConfirmationMessage string `yaml:"confirmation_message"`
}

// LoadMessagesFile reads a YAML messages file. Unknown keys are rejected so a
// typo does not silently fall back to defaults.
func LoadMessagesFile(path string) (Messages, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, err
	}
	dec := yaml.NewDecoder(strings.NewReader(string(raw)))
	dec.KnownFields(true)
	var msgs Messages
	if err := dec.Decode(&msgs); err != nil {
		return Messages{}, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	return msgs, nil
}

// Apply overrides the config texts with any non-empty values from msgs.
func (m Messages) Apply(cfg Config) Config {
	if strings.TrimSpace(m.WelcomeMessage) != "" {
		cfg.WelcomeMessage = m.WelcomeMessage
	}
	if strings.TrimSpace(m.ConfirmationMessage) != "" {
		cfg.ConfirmationMessage = m.ConfirmationMessage
	}
	return cfg
}
