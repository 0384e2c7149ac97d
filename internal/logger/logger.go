package logger

import (
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	currentLevel  = LevelInfo
	currentFormat = FormatText
	logger        = stdlog.New(os.Stdout, "", 0)
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	case "NONE":
		currentLevel = LevelNone
	}
}

func SetFormat(format string) {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		currentFormat = strings.ToLower(format)
	}
}

// SetOutput redirects log lines, primarily so tests can capture them.
func SetOutput(w io.Writer) {
	logger = stdlog.New(w, "", 0)
}

type line struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func log(level Level, format string, v ...any) {
	if level < currentLevel {
		return
	}

	message := fmt.Sprintf(format, v...)

	if currentFormat == FormatJSON {
		encoded, err := json.Marshal(line{
			Time:    time.Now().Format(time.RFC3339),
			Level:   level.String(),
			Message: message,
		})
		if err != nil {
			return
		}
		logger.Println(string(encoded))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logger.Println(fmt.Sprintf("[%s] [%s] %s", timestamp, level.String(), message))
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
