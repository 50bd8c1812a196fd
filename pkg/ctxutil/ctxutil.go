// Package ctxutil carries request-scoped identity through context.Context.
package ctxutil

import "context"

type (
	learnerIDKey struct{}
	requestIDKey struct{}
	sinkKey      struct{}
)

// WithLearnerID returns ctx carrying the authenticated learner. A sink
// installed further out with WithLearnerSink receives the id as well.
func WithLearnerID(ctx context.Context, id string) context.Context {
	if sink, _ := ctx.Value(sinkKey{}).(*string); sink != nil {
		*sink = id
	}
	return context.WithValue(ctx, learnerIDKey{}, id)
}

// LearnerIDFromCtx reports the learner id; ok is false when none or an
// empty one is set.
func LearnerIDFromCtx(ctx context.Context) (id string, ok bool) {
	id, _ = ctx.Value(learnerIDKey{}).(string)
	return id, id != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromCtx returns "" when no request id is set.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithLearnerSink lets an outer middleware learn which learner an inner one
// authenticated, since context values only flow inward.
func WithLearnerSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}
