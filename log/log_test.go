/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package log

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testLogWriter struct {
	C chan string
}

func newTestLogWriter() *testLogWriter {
	return &testLogWriter{C: make(chan string, 8)}
}

func (tw *testLogWriter) Write(p []byte) (int, error) {
	tw.C <- string(p)
	return len(p), nil
}

func fetchLogLine(t *testing.T, lw *testLogWriter) string {
	t.Helper()
	select {
	case l := <-lw.C:
		return l
	case <-time.After(time.Millisecond * 200):
		require.Fail(t, "log fetch timeout")
		return ""
	}
}

func TestDebugLog(t *testing.T) {
	Initialize(&Config{Level: DebugLevel})
	defer Shutdown()

	lw := newTestLogWriter()
	instance().outWriter = lw

	Debugf("test debug log!")
	l := fetchLogLine(t, lw)
	require.True(t, strings.Contains(l, "[DBG]"))
	require.True(t, strings.Contains(l, "test debug log!"))
}

func TestInfoLog(t *testing.T) {
	Initialize(&Config{Level: InfoLevel})
	defer Shutdown()

	lw := newTestLogWriter()
	instance().outWriter = lw

	Infof("test info log!")
	l := fetchLogLine(t, lw)
	require.True(t, strings.Contains(l, "[INF]"))
	require.True(t, strings.Contains(l, "test info log!"))
}

func TestErrorLog(t *testing.T) {
	Initialize(&Config{Level: ErrorLevel})
	defer Shutdown()

	lw := newTestLogWriter()
	instance().outWriter = lw

	Errorf("test error log!")
	l := fetchLogLine(t, lw)
	require.True(t, strings.Contains(l, "[ERR]"))
	require.True(t, strings.Contains(l, "test error log!"))

	Error(errors.New("some error string"))
	l = fetchLogLine(t, lw)
	require.True(t, strings.Contains(l, "some error string"))
}

func TestFatalLog(t *testing.T) {
	Initialize(&Config{Level: FatalLevel})
	defer Shutdown()

	lw := newTestLogWriter()
	instance().outWriter = lw
	exitHandler = func() {}

	done := make(chan struct{})
	go func() {
		l := fetchLogLine(t, lw)
		require.True(t, strings.Contains(l, "[FTL]"))
		require.True(t, strings.Contains(l, "test fatal log!"))
		close(done)
	}()
	Fatalf("test fatal log!")
	<-done
}

func TestLogLevelConfig(t *testing.T) {
	abbrs := map[Level]string{
		DebugLevel:   "DBG",
		InfoLevel:    "INF",
		WarningLevel: "WRN",
		ErrorLevel:   "ERR",
		FatalLevel:   "FTL",
	}
	for level, abbr := range abbrs {
		require.Equal(t, abbr, logLevelAbbreviation(level))
	}
}
