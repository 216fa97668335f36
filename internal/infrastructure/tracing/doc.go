/*
Package tracing provides lightweight request tracing for the portal backend.

Each HTTP request gets a span. The trace id comes from the X-Trace-ID header
when the caller sends one, otherwise a new req_<ULID> id is generated. Both
ids are echoed back in response headers so a browser console line can be
matched to a server log entry.

Finished spans are buffered and logged through zap by a collector goroutine.
When the buffer is full spans are dropped with a warning.

# Usage

	tracer := tracing.New("portal", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "status.check")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
