package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

var (
	log = newLogger()

	cleanupOnce sync.Once
	cleanupStop = make(chan struct{})
	closeOnce   sync.Once
)

// Options controls where and how much the service logs.
type Options struct {
	Level      string // DEBUG, INFO, WARN, ERROR
	Directory  string // empty disables file output
	MaxAgeDays int
	Stdout     bool
}

// LogFormatter log formatter structure
type LogFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

// Format format entry in custom format
func (f *LogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := f.LevelDesc[entry.Level]

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", timestamp, level, entry.Message)
	for k, v := range entry.Data {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&LogFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		LevelDesc:       []string{"PANIC", "FATAL", "ERROR", "WARN", "INFO", "DEBUG", "TRACE"},
	})
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init initializes the logger
func Init(opts Options) error {
	log.SetLevel(parseLevel(opts.Level))

	var writers []io.Writer
	if opts.Stdout {
		writers = append(writers, os.Stdout)
	}

	if opts.Directory != "" {
		maxAge := opts.MaxAgeDays
		if maxAge <= 0 {
			maxAge = 2 // days
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		rl, err := initializeLogRotation(opts.Directory, maxAge)
		if err != nil {
			return fmt.Errorf("failed to initialize log rotation: %w", err)
		}
		writers = append(writers, rl)

		cleanupOnce.Do(func() {
			go deleteOldLogFilesRoutine(opts.Directory, maxAge, time.Hour, cleanupStop)
		})
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return nil
}

// Close stops the old log folder cleanup
func Close() {
	closeOnce.Do(func() { close(cleanupStop) })
}

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Info logs informational messages
func Info(message string) {
	log.Info(message)
}

// Error logs error messages
func Error(message string) {
	log.Error(message)
}

// Debug logs debug messages
func Debug(message string) {
	log.Debug(message)
}

// Warn logs warning messages
func Warn(message string) {
	log.Warn(message)
}

// Fatal logs fatal error and exits
func Fatal(message string) {
	log.Fatal(message)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// WithFields logs with additional context
func WithFields(fields map[string]interface{}, message string) {
	log.WithFields(logrus.Fields(fields)).Info(message)
}

// WriteLog writes a log entry at the specified level tagged with a request id and key
func WriteLog(level string, requestID string, key string, message interface{}) {
	if requestID == "" {
		requestID = "no-request-id"
	}

	line := fmt.Sprintf("[%v] [%v] | %+v", key, requestID, message)
	switch strings.ToUpper(level) {
	case "ERROR":
		log.Error(line)
	case "WARN":
		log.Warn(line)
	case "DEBUG":
		log.Debug(line)
	default:
		log.Info(line)
	}
}

// initializeLogRotation rotates hourly into one folder per day and gzips
// the previous file
func initializeLogRotation(baseDir string, logFileMaxAge int) (*rotatelogs.RotateLogs, error) {
	return rotatelogs.New(
		filepath.Join(baseDir, "%Y-%m-%d", "%Y-%m-%d-%H.log"),
		rotatelogs.WithLinkName(filepath.Join(baseDir, "current.log")),
		rotatelogs.WithRotationTime(time.Hour),
		rotatelogs.WithMaxAge(time.Duration(logFileMaxAge)*24*time.Hour),
		rotatelogs.WithHandler(rotatelogs.HandlerFunc(func(e rotatelogs.Event) {
			if e.Type() != rotatelogs.FileRotatedEventType {
				return
			}
			prev := e.(*rotatelogs.FileRotatedEvent).PreviousFile()
			if prev == "" {
				return
			}
			if err := compressLogFile(prev); err != nil {
				log.Errorf("log compression failed: %v", err)
			}
		})),
	)
}

func deleteOldLogFilesRoutine(logDirectory string, logFileMaxAge int, every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		deleteOldDateFolders(logDirectory, logFileMaxAge, time.Now())
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}

// deleteOldDateFolders removes date folders last modified before the cutoff
func deleteOldDateFolders(baseDir string, maxAgeDays int, now time.Time) {
	cutoff := now.Add(-time.Duration(maxAgeDays) * 24 * time.Hour)

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("failed to read log directory %s: %v", baseDir, err)
		}
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(baseDir, entry.Name())
			if err := os.RemoveAll(path); err != nil {
				log.Errorf("failed to delete log directory %s: %v", path, err)
			}
		}
	}
}

// compressLogFile gzips src next to itself and removes the original
func compressLogFile(src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	gzf, err := os.OpenFile(src+".gz", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fi.Mode())
	if err != nil {
		return fmt.Errorf("failed to open compressed log file: %w", err)
	}
	defer gzf.Close()

	gz := gzip.NewWriter(gzf)
	if _, err := io.Copy(gz, f); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
