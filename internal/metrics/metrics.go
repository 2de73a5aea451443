// metrics — счётчики Prometheus для операций аутентификации.
//
// Методы безопасны на nil-получателе: сервис без метрик просто ничего не считает.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки result/reason.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultInactive           = "inactive"
	ResultDuplicate          = "duplicate"
	ResultInvalidInput       = "invalid_input"
	ResultForbidden          = "forbidden"
	ResultUserNotFound       = "user_not_found"
	ResultPrivilege          = "insufficient_privilege"
	ResultError              = "error"
)

// Metrics — набор счётчиков сервиса.
type Metrics struct {
	logins        *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	registrations *prometheus.CounterVec
	guard         *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "login_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "refresh_total",
			Help:      "Refresh token exchanges by result.",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "registration_total",
			Help:      "Registrations by result.",
		}, []string{"result"}),
		guard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "guard_rejections_total",
			Help:      "Requests rejected by the identity guard chain by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.logins, m.refreshes, m.registrations, m.guard)

	return m
}

// Login учитывает попытку входа.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// Refresh учитывает обмен refresh-токена.
func (m *Metrics) Refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// Registration учитывает регистрацию.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// GuardRejected учитывает отказ цепочки проверок.
func (m *Metrics) GuardRejected(reason string) {
	if m == nil {
		return
	}
	m.guard.WithLabelValues(reason).Inc()
}
