package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Error components
const (
	ComponentDB      = "db"
	ComponentGateway = "gateway"
	ComponentMQ      = "mq"
	ComponentRedis   = "redis"
)

// Monitor business counters exported on /metrics
type Monitor struct {
	errors    *prometheus.CounterVec
	checkouts prometheus.Counter
	payments  *prometheus.CounterVec
	worker    *prometheus.CounterVec
}

var globalMonitor = NewMonitor(prometheus.DefaultRegisterer)

// GetMonitor returns the process-wide monitor
func GetMonitor() *Monitor {
	return globalMonitor
}

// NewMonitor creates the counters and registers them on reg.
func NewMonitor(reg prometheus.Registerer) *Monitor {
	m := &Monitor{
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_errors_total",
			Help: "Infrastructure errors by component.",
		}, []string{"component"}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_checkouts_total",
			Help: "Orders created by the pay step.",
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_payments_total",
			Help: "Verified payments by final status.",
		}, []string{"status"}),
		worker: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_payment_worker_messages_total",
			Help: "Payment events handled by the worker.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.errors, m.checkouts, m.payments, m.worker)
	return m
}

func (m *Monitor) RecordError(component string) {
	m.errors.WithLabelValues(component).Inc()
}

func (m *Monitor) RecordCheckout() {
	m.checkouts.Inc()
}

// RecordPayment counts a settled payment
func (m *Monitor) RecordPayment(status string) {
	m.payments.WithLabelValues(status).Inc()
}

func (m *Monitor) RecordWorkerProcessed() {
	m.worker.WithLabelValues("processed").Inc()
}

func (m *Monitor) RecordWorkerFailed() {
	m.worker.WithLabelValues("failed").Inc()
}
