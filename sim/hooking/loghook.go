package hooking

import (
	"log"
)

// LogHookBase provides the common logic for the hooks that print what they
// observe.
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase that writes plain lines, without
// prefix or timestamp, through the given logger.
func NewLogHookBase(logger *log.Logger) LogHookBase {
	return LogHookBase{Logger: logger}
}
