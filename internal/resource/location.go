package resource

import (
	"fmt"
	"strings"
)

// DefaultNamespace используется, когда идентификатор задан без пространства имён.
const DefaultNamespace = "minecraft"

// Location представляет идентификатор ресурса вида "namespace:path"
// (предмет, сущность, тег или измерение).
type Location struct {
	Namespace string
	Path      string
}

// New создаёт Location без проверки символов.
func New(namespace, path string) Location {
	return Location{Namespace: namespace, Path: path}
}

// TryParse разбирает строку "ns:path". Пространство имён по умолчанию - minecraft.
// Возвращает false, если строка пустая или содержит недопустимые символы.
func TryParse(s string) (Location, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, false
	}

	namespace, path := DefaultNamespace, s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		if i > 0 {
			namespace = s[:i]
		}
		path = s[i+1:]
	}

	if path == "" || !validNamespace(namespace) || !validPath(path) {
		return Location{}, false
	}
	return Location{Namespace: namespace, Path: path}, true
}

// MustParse разбирает идентификатор и паникует при ошибке. Только для констант и тестов.
func MustParse(s string) Location {
	loc, ok := TryParse(s)
	if !ok {
		panic(fmt.Sprintf("resource: недопустимый идентификатор %q", s))
	}
	return loc
}

// String возвращает каноническое представление "ns:path"
func (l Location) String() string {
	return l.Namespace + ":" + l.Path
}

// IsZero сообщает, что идентификатор не задан
func (l Location) IsZero() bool {
	return l.Namespace == "" && l.Path == ""
}

func validNamespace(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-') {
			return false
		}
	}
	return true
}

func validPath(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-' || r == '/') {
			return false
		}
	}
	return true
}
