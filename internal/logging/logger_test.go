package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("governor", &buf, WARN)

	l.Info("не должно попасть в вывод")
	l.Warn("reagent %s не найден", "minecraft:nope")

	out := buf.String()
	assert.NotContains(t, out, "не должно попасть")
	assert.Contains(t, out, "[WARN] [governor] reagent minecraft:nope не найден")
}

func TestSetDefaultRedirectsPackageFunctions(t *testing.T) {
	var buf bytes.Buffer
	prev := SetDefault(NewConsoleLogger("", &buf, TRACE))
	defer SetDefault(prev)

	Debug("tick %d", 7)
	Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[DEBUG] tick 7")
	assert.Contains(t, lines[1], "[ERROR] boom")
}

func TestNewLoggerWritesFile(t *testing.T) {
	SetLogDir(t.TempDir())
	defer SetLogDir("logs")

	l, err := NewLogger("filetest")
	assert.NoError(t, err)
	l.SetLevels(ERROR, TRACE)
	l.Trace("trace line")
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "повторное закрытие безопасно")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, INFO, ParseLevel("unknown"))
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestManagerSharesComponentLoggers(t *testing.T) {
	SetLogDir(t.TempDir())
	defer SetLogDir("logs")

	lm := &LoggerManager{loggers: make(map[string]*Logger), consoleLevel: INFO}
	a := lm.Get("governor")
	assert.Same(t, a, lm.Get("governor"))
	lm.Get("api")
	assert.Equal(t, []string{"api", "governor"}, lm.Components())

	lm.SetConsoleLevel(ERROR)
	assert.Equal(t, ERROR, a.minConsoleLevel)
	assert.Equal(t, ERROR, lm.Get("stacksize").minConsoleLevel)

	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.Components())
}
