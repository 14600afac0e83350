package git

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bashhack/gitdoc/internal/logger"
)

// Confirmation is the user's answer to a confirmation prompt.
type Confirmation int

const (
	Declined Confirmation = iota
	Confirmed
)

// UserInteractor defines an interface for interacting with the user
type UserInteractor interface {
	// Confirm asks the user to approve action and returns their response
	Confirm(message, action string) Confirmation

	// PromptString asks for a line of text, returning def when the answer is empty
	PromptString(question, def string) string
}

// DefaultInteractor is the standard implementation of UserInteractor
// that reads from stdin and writes prompts through the logger
type DefaultInteractor struct {
	Reader io.Reader
	Logger logger.Logger

	once sync.Once
	br   *bufio.Reader
}

// NewDefaultInteractor creates a new DefaultInteractor
func NewDefaultInteractor(logger logger.Logger) *DefaultInteractor {
	return &DefaultInteractor{
		Reader: os.Stdin,
		Logger: logger,
	}
}

func (i *DefaultInteractor) readLine() (string, error) {
	i.once.Do(func() {
		i.br = bufio.NewReader(i.Reader)
	})
	line, err := i.br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm shows message and asks whether to perform action. Anything other
// than an answer starting with "y" declines.
func (i *DefaultInteractor) Confirm(message, action string) Confirmation {
	i.Logger.WarningToUser("%s", message)
	i.Logger.StatusMessage("%s? (y/n): ", action)

	answer, err := i.readLine()
	if err != nil {
		// On error, default to 'no'
		return Declined
	}
	if strings.HasPrefix(strings.ToLower(answer), "y") {
		return Confirmed
	}
	return Declined
}

// PromptString asks question and returns the trimmed answer, or def.
func (i *DefaultInteractor) PromptString(question, def string) string {
	if def != "" {
		i.Logger.StatusMessage("%s [%s]: ", question, def)
	} else {
		i.Logger.StatusMessage("%s: ", question)
	}

	answer, err := i.readLine()
	if err != nil || answer == "" {
		return def
	}
	return answer
}

// NonInteractiveInteractor always returns default values without prompting
type NonInteractiveInteractor struct{}

// NewNonInteractiveInteractor creates a new NonInteractiveInteractor
func NewNonInteractiveInteractor() *NonInteractiveInteractor {
	return &NonInteractiveInteractor{}
}

// Confirm always declines without prompting
func (i *NonInteractiveInteractor) Confirm(message, action string) Confirmation {
	return Declined
}

// PromptString always returns def without prompting
func (i *NonInteractiveInteractor) PromptString(question, def string) string {
	return def
}
