package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/mediator"
)

// PrometheusMiddleware records duration, outcome and concurrency of every
// request dispatched through the mediator. Request names are the bare type
// name, so "*queries.ListColonySummariesQuery" is reported as
// "ListColonySummariesQuery".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := extractRequestName(request)
		collector.trackInFlight(name, 1)
		defer collector.trackInFlight(name, -1)

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(name, time.Since(start).Seconds(), err == nil)

		return response, err
	}
}

func extractRequestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}

	fullName := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}
