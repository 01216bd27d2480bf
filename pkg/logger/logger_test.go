package logger

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func TestWriteLog_Format(t *testing.T) {
	buf := captureOutput(t)

	WriteLog("INFO", "req-1", "SUBMIT", "registration queued")

	assert.Contains(t, buf.String(), "[INFO] [SUBMIT] [req-1] | registration queued")
}

func TestWriteLog_DefaultsRequestID(t *testing.T) {
	buf := captureOutput(t)

	WriteLog("ERROR", "", "EDIT", "bad path")

	assert.Contains(t, buf.String(), "[ERROR] [EDIT] [no-request-id] | bad path")
}

func TestWithFields(t *testing.T) {
	buf := captureOutput(t)

	WithFields(map[string]interface{}{"session": "abc"}, "created")

	assert.Contains(t, buf.String(), "created session=abc")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("ERROR"))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	buf := captureOutput(t)
	log.SetLevel(logrus.InfoLevel)

	Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestCompressLogFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(src, []byte("hello log"), 0644))

	require.NoError(t, compressLogFile(src))

	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	f, err := os.Open(src + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "hello log", string(data))
}

func TestDeleteOldDateFolders(t *testing.T) {
	base := t.TempDir()
	old := filepath.Join(base, "2020-01-01")
	fresh := filepath.Join(base, "2020-01-05")
	require.NoError(t, os.Mkdir(old, 0755))
	require.NoError(t, os.Mkdir(fresh, 0755))

	now := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, now.AddDate(0, 0, -5), now.AddDate(0, 0, -5)))
	require.NoError(t, os.Chtimes(fresh, now.AddDate(0, 0, -1), now.AddDate(0, 0, -1)))

	deleteOldDateFolders(base, 2, now)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestInit_WritesIntoDateFolder(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		log.SetLevel(logrus.InfoLevel)
	})

	require.NoError(t, Init(Options{Level: "INFO", Directory: dir, MaxAgeDays: 1}))
	Info("to file")

	files, err := filepath.Glob(filepath.Join(dir, "*", "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, time.Now().Format("2006-01-02"), filepath.Base(filepath.Dir(files[0])))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] to file")
}

func TestDeleteOldLogFilesRoutine_Stops(t *testing.T) {
	base := t.TempDir()
	old := filepath.Join(base, "2020-01-01")
	require.NoError(t, os.Mkdir(old, 0755))
	past := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, past, past))

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		deleteOldLogFilesRoutine(base, 2, time.Hour, stop)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(old)
		return os.IsNotExist(err)
	}, time.Second, 5*time.Millisecond)

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop")
	}
}

func TestClose_Idempotent(t *testing.T) {
	assert.NotPanics(t, Close)
	assert.NotPanics(t, Close)
}
