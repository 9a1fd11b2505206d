package dupefilehash

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	globalVerboseLevel int
	debugFlags         map[string]bool
	debugMu            sync.RWMutex

	logger = newLogger(os.Stderr)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Logger returns the package logger
func Logger() *logrus.Logger {
	return logger
}

// SetLogOutput redirects package logging, mainly for tests
func SetLogOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetVerboseLevel sets the global verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
func SetVerboseLevel(level int) {
	globalVerboseLevel = level
	switch {
	case level <= 0:
		logger.SetLevel(logrus.WarnLevel)
	case level == 1:
		logger.SetLevel(logrus.InfoLevel)
	case level == 2:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.TraceLevel)
	}
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	return globalVerboseLevel
}

// VerboseEnter logs function entry at level 3+ and returns a defer function for exit logging
func VerboseEnter() func() {
	if globalVerboseLevel < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	logger.WithField("func", funcName).Trace("enter")
	return func() {
		logger.WithField("func", funcName).Trace("exit")
	}
}

// VerboseLog logs a message at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if globalVerboseLevel < level {
		return
	}
	msg := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
	switch level {
	case 0, 1:
		logger.Info(msg)
	case 2:
		logger.Debug(msg)
	default:
		logger.Trace(msg)
	}
}

// logFileFailure reports a per-file failure; these are always shown
func logFileFailure(path string, err error) {
	logger.WithFields(logrus.Fields{
		"path": path,
		"kind": errorKindName(err),
	}).Warn(err.Error())
}

// SetDebugFlags replaces the debug flags with those in flagsStr, a
// comma-separated list of names ("scan,index") or name:value pairs
// ("scan:true,index:off")
func SetDebugFlags(flagsStr string) {
	flags := make(map[string]bool)
	for _, item := range strings.Split(flagsStr, ",") {
		name, value, hasValue := strings.Cut(strings.TrimSpace(item), ":")
		if name == "" {
			continue
		}
		enabled := true
		if hasValue {
			switch strings.ToLower(strings.TrimSpace(value)) {
			case "false", "0", "no", "off":
				enabled = false
			}
		}
		flags[strings.ToLower(name)] = enabled
	}

	debugMu.Lock()
	debugFlags = flags
	debugMu.Unlock()
}

// IsDebugEnabled reports whether a debug flag is on
func IsDebugEnabled(flag string) bool {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugFlags[strings.ToLower(flag)]
}
