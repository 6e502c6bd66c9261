package ember

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"text/template"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Logger logs information generated while serving requests, templated
// the same way the teacher framework's logger builds its lines: a
// text/template line prefix, a pooled buffer, and a mutex-guarded
// writer.
type Logger struct {
	template   *template.Template
	bufferPool *sync.Pool
	mutex      *sync.Mutex

	Output io.Writer
	Level  LogLevel
	Format string
}

// LogLevel is the `logLevel` configuration field (§6): off|error|warn|info.
type LogLevel uint8

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel converts the configuration string form of logLevel into
// a LogLevel, defaulting to LogLevelInfo for an unrecognized value.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "off":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

const defaultLoggerFormat = `{"time":"{{.time_rfc3339}}","level":"{{.level}}","file":"{{.short_file}}","line":"{{.line}}"}`

// newLogger returns a Logger writing to os.Stdout at the given level.
func newLogger(level LogLevel) *Logger {
	return &Logger{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 256))
			},
		},
		mutex:  &sync.Mutex{},
		Output: os.Stdout,
		Level:  level,
		Format: defaultLoggerFormat,
	}
}

// Info logs at info level.
func (l *Logger) Info(args ...interface{}) { l.log(LogLevelInfo, "INFO", "", args...) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.log(LogLevelInfo, "INFO", format, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(args ...interface{}) { l.log(LogLevelWarn, "WARN", "", args...) }

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.log(LogLevelWarn, "WARN", format, args...) }

// Error logs at error level.
func (l *Logger) Error(args ...interface{}) { l.log(LogLevelError, "ERROR", "", args...) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LogLevelError, "ERROR", format, args...)
}

// log renders one log line if lvl is at or above the configured
// threshold (higher LogLevel values are more verbose, so the check is
// the opposite direction: a message logs when its level <= l.Level).
func (l *Logger) log(lvl LogLevel, levelName, format string, args ...interface{}) {
	if l.Level == LogLevelOff || lvl > l.Level {
		return
	}

	if l.template == nil {
		l.template = template.Must(template.New("logger").Parse(l.Format))
	}

	message := ""
	if format == "" {
		message = fmt.Sprint(args...)
	} else {
		message = fmt.Sprintf(format, args...)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	buf := l.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		l.bufferPool.Put(buf)
	}()

	_, file, line, _ := runtime.Caller(2)

	data := map[string]interface{}{
		"time_rfc3339": time.Now().Format(time.RFC3339),
		"level":        levelName,
		"short_file":   path.Base(file),
		"long_file":    file,
		"line":         strconv.Itoa(line),
	}

	if err := l.template.Execute(buf, data); err != nil {
		fmt.Fprintf(l.Output, "%s %s\n", levelName, message)
		return
	}

	s := buf.String()
	if len(s) > 0 && s[len(s)-1] == '}' {
		buf.Truncate(buf.Len() - 1)
		buf.WriteString(`,"message":`)
		encoded, _ := json.Marshal(message)
		buf.Write(encoded)
		buf.WriteByte('}')
	} else {
		buf.WriteByte(' ')
		buf.WriteString(message)
	}
	buf.WriteByte('\n')

	l.Output.Write(buf.Bytes())
}

// requestIDCounter disambiguates request ids generated within the same
// nanosecond on the same connection.
var requestIDCounter uint64

// nextRequestID derives a 16-character lowercase hex request id from
// remoteAddr, start, and a per-process counter via xxhash.Sum64 — cheap
// and collision-resistant enough for log correlation, not a security
// token, so crypto/rand would be overkill.
func nextRequestID(remoteAddr string, start time.Time) string {
	n := atomic.AddUint64(&requestIDCounter, 1)
	seed := remoteAddr + start.Format(time.RFC3339Nano) + strconv.FormatUint(n, 10)
	return fmt.Sprintf("%016x", xxhash.Sum64String(seed))
}
