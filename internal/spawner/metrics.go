package spawner

import "github.com/prometheus/client_golang/prometheus"

// Metrics - Prometheus-счётчики переходов governor.
// Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	spawnsCounted   prometheus.Counter
	disabled        prometheus.Counter
	reenabled       prometheus.Counter
	reagentResets   prometheus.Counter
	bonusExperience prometheus.Counter
}

// NewMetrics создаёт счётчики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		spawnsCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spawner",
			Name:      "spawns_counted_total",
			Help:      "Мобы, учтённые в счётчиках спаунеров.",
		}),
		disabled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spawner",
			Name:      "disabled_total",
			Help:      "Переходы спаунеров в отключённое состояние.",
		}),
		reenabled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spawner",
			Name:      "reenabled_total",
			Help:      "Автоматические повторные включения после роста лимита.",
		}),
		reagentResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spawner",
			Name:      "reagent_resets_total",
			Help:      "Сбросы спаунеров реагентом или администратором.",
		}),
		bonusExperience: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spawner",
			Name:      "bonus_experience_total",
			Help:      "Дополнительный опыт, выданный за разрушение спаунеров.",
		}),
	}

	reg.MustRegister(m.spawnsCounted, m.disabled, m.reenabled, m.reagentResets, m.bonusExperience)
	return m
}

func (m *Metrics) spawnCounted() {
	if m != nil {
		m.spawnsCounted.Inc()
	}
}

func (m *Metrics) transition(kind TransitionKind) {
	if m == nil {
		return
	}
	switch kind {
	case TransitionDisabled:
		m.disabled.Inc()
	case TransitionReenabled:
		m.reenabled.Inc()
	case TransitionReset:
		m.reagentResets.Inc()
	}
}

func (m *Metrics) bonus(extra int) {
	if m != nil && extra > 0 {
		m.bonusExperience.Add(float64(extra))
	}
}
