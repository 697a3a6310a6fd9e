package device

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transfersCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tdn_device_transfers_total",
		Help: "The total number of host/device transfers enqueued, by direction.",
	}, []string{"direction"})

	dispatchCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdn_device_dispatches_total",
		Help: "The total number of compute task dispatches enqueued.",
	})

	dispatchFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdn_device_dispatch_failures_total",
		Help: "The total number of compute task dispatches that failed before enqueue.",
	})

	resourcesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tdn_device_resources",
		Help: "The number of device resources currently registered.",
	})
)
