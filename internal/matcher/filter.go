package matcher

import "github.com/annel0/blockverse-tweaks/internal/resource"

// Verdict - результат классификации сущности фильтром
type Verdict uint8

const (
	// Allowed - сущность участвует в лимите спаунера
	Allowed Verdict = iota
	// Blocked - сущность исключена из лимита (спаунер не отключается)
	Blocked
)

func (v Verdict) String() string {
	if v == Blocked {
		return "blocked"
	}
	return "allowed"
}

// Classify применяет список матчеров как чёрный или белый список.
// Побеждает первое совпадение. Пустой список всегда даёт Allowed,
// иначе пустой белый список блокировал бы всё.
func Classify(entityType, dimension resource.Location, matchers []Matcher, asWhitelist bool, tags TagSource) Verdict {
	if len(matchers) == 0 {
		return Allowed
	}

	matched := false
	for _, m := range matchers {
		if m.MatchesEntity(entityType, dimension, tags) {
			matched = true
			break
		}
	}

	if asWhitelist {
		if matched {
			return Allowed
		}
		return Blocked
	}
	if matched {
		return Blocked
	}
	return Allowed
}
