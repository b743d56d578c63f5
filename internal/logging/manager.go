package logging

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// LoggerManager хранит логгеры компонентов (governor, stacksize, api, world…).
// Порог консоли общий: он применяется и к уже созданным, и к новым логгерам.
type LoggerManager struct {
	mu           sync.Mutex
	loggers      map[string]*Logger
	consoleLevel LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = &LoggerManager{
			loggers:      make(map[string]*Logger),
			consoleLevel: INFO,
		}
	})
	return globalManager
}

// Get возвращает логгер компонента. Если файл логов не открылся,
// компонент пишет только в консоль.
func (lm *LoggerManager) Get(component string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[component]; ok {
		return l
	}
	l, err := NewLogger(component)
	if err != nil {
		l = NewConsoleLogger(component, os.Stdout, lm.consoleLevel)
		l.Warn("Файловый лог недоступен: %v", err)
	}
	l.SetLevels(lm.consoleLevel, TRACE)
	lm.loggers[component] = l
	return l
}

// SetConsoleLevel меняет порог консоли у всех компонентов
func (lm *LoggerManager) SetConsoleLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.consoleLevel = level
	for _, l := range lm.loggers {
		l.SetLevels(level, TRACE)
	}
}

// Components возвращает имена созданных логгеров по алфавиту
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	out := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// CloseAll закрывает файлы всех компонентов и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().Get(component)
}

func GetGovernorLogger() *Logger  { return GetComponentLogger("governor") }
func GetStackSizeLogger() *Logger { return GetComponentLogger("stacksize") }
func GetAPILogger() *Logger       { return GetComponentLogger("api") }
