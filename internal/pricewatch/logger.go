package pricewatch

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// restyLogger routes resty's internal messages into the client's zerolog
// logger instead of stderr, which the TUI owns.
type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Str("source", "resty").Msg(restyMessage(format, v))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Str("source", "resty").Msg(restyMessage(format, v))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Str("source", "resty").Msg(restyMessage(format, v))
}

func restyMessage(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
