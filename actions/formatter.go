package actions

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Formatter formats log entries as workflow commands so that debug output is only shown
// when step debugging is enabled and warnings and errors are annotated in the run
type Formatter struct{}

// Format implements logrus.Formatter
func (f *Formatter) Format(e *log.Entry) ([]byte, error) {
	msg := e.Message
	if len(e.Data) > 0 {
		keys := make([]string, 0, len(e.Data))
		for k := range e.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			msg += fmt.Sprintf(" %s=%v", k, e.Data[k])
		}
	}

	var line string
	switch e.Level {
	case log.TraceLevel, log.DebugLevel:
		line = "::debug::" + escapeData(msg)
	case log.WarnLevel:
		line = "::warning::" + escapeData(msg)
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		line = "::error::" + escapeData(msg)
	default:
		line = strings.TrimRight(msg, "\n")
	}

	return []byte(line + "\n"), nil
}
