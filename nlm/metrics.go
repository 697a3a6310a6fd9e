package nlm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slotCopiesCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdn_nlm_slot_copies_total",
		Help: "The total number of frame copies into temporal slots.",
	})

	slotHitsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdn_nlm_slot_hits_total",
		Help: "The total number of temporal slot copies skipped because the frame was resident.",
	})

	framesCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tdn_nlm_frames_total",
		Help: "The total number of frames processed by the filter.",
	})

	passThroughCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tdn_nlm_pass_through_planes_total",
		Help: "The total number of planes copied unfiltered, by reason.",
	}, []string{"reason"})
)
