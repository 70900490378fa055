// Package lambdautil wraps Lambda handlers with request correlation and panic recovery.
package lambdautil

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// ErrPanic is wrapped by the error returned when a handler panics.
var ErrPanic = errors.New("handler panicked")

// Handler is the shape accepted by lambda.Start for typed events.
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Wrap returns h with the Lambda request id installed as the correlation id
// (a fresh UUID outside Lambda) and panics converted into errors.
func Wrap[Req, Resp any](name string, log logger.Logger, h Handler[Req, Resp]) Handler[Req, Resp] {
	return func(ctx context.Context, req Req) (resp Resp, err error) {
		var requestID string
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			requestID = lc.AwsRequestID
		}
		ctx, correlationID := logger.EnsureCorrelationID(ctx, requestID)
		invocationLog := log.WithCorrelationID(correlationID).WithFields(logger.StringField("handler", name))

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				invocationLog.Error("Panic recovered",
					logger.Field("panic", r),
					logger.StringField("stack_trace", string(debug.Stack())),
				)
				var zero Resp
				resp = zero
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}

			fields := []logger.LogField{logger.DurationField("duration", time.Since(start))}
			if err != nil {
				invocationLog.Error("Invocation failed", append(fields, logger.ErrorField(err))...)
				return
			}
			invocationLog.Debug("Invocation completed", fields...)
		}()

		return h(ctx, req)
	}
}
