package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const ansiReset = "\033[0m"

var levelStyles = map[string]struct{ tag, color string }{
	"DEBUG": {"[DBG]", "\033[36m"},
	"INFO":  {"[INF]", "\033[32m"},
	"WARN":  {"[WRN]", "\033[33m"},
	"ERROR": {"[ERR]", "\033[31m"},
	"FATAL": {"[FTL]", "\033[35m"},
}

// consoleWriter renders "15:04:05 [AUD][INF] message key:value". The
// service prefix is the upper-cased first three letters of its name.
func consoleWriter(w io.Writer, service string, noColor bool) zerolog.ConsoleWriter {
	prefix := ""
	if len(service) >= 3 {
		prefix = "[" + strings.ToUpper(service[:3]) + "]"
		if !noColor {
			prefix = "\033[34m" + prefix + ansiReset
		}
	}
	str := func(i interface{}) string {
		if i == nil {
			return ""
		}
		return fmt.Sprint(i)
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToUpper(str(i))
			style, ok := levelStyles[lvl]
			if !ok {
				return prefix + "[" + lvl + "]"
			}
			if noColor {
				return prefix + style.tag
			}
			return prefix + style.color + style.tag + ansiReset
		},
		FormatMessage:    str,
		FormatFieldName:  func(i interface{}) string { return str(i) + ":" },
		FormatFieldValue: str,
	}
}
