package api

import (
	"strings"

	"github.com/YaleSpinup/ecs-taskdef-render/taskdef"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ecs",
	Subsystem: "taskdef",
	Name:      "renders_total",
	Help:      "The total number of task definition render requests by result",
}, []string{"result"})

// renderResult is the result label for a render request
func renderResult(err error) string {
	if err == nil {
		return "success"
	}

	if k := taskdef.KindOf(err); k != "" {
		return strings.ToLower(k)
	}

	return "error"
}
