// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupParams configures Setup.
type SetupParams struct {
	// FileName enables a rotated log file. ".log" is appended if missing.
	FileName string

	// ToConsole also writes to the console writer when FileName is set.
	ToConsole bool

	// Console is the console writer. Defaults to os.Stderr so command output
	// on stdout stays machine readable.
	Console io.Writer

	Level      string
	FormatJSON bool
}

// Setup applies params to the standard logrus logger.
func Setup(params SetupParams) {
	if params.FormatJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(GetLevel(params.Level))

	console := params.Console
	if console == nil {
		console = os.Stderr
	}

	if params.FileName == "" {
		log.SetOutput(console)
		return
	}

	if !strings.HasSuffix(params.FileName, ".log") {
		params.FileName += ".log"
	}

	fileLogger := &lumberjack.Logger{
		Filename:  params.FileName,
		MaxSize:   20, // megabytes
		LocalTime: false,
		Compress:  true,
	}

	if params.ToConsole {
		log.SetOutput(NewCombinedWriter(console, fileLogger))
	} else {
		log.SetOutput(fileLogger)
	}
	log.Debugf("writing logs to %s", params.FileName)
}

// GetLevel parses a level name. Unknown names yield info.
func GetLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
