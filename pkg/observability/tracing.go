package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer opens X-Ray subsegments around document-store round-trips.
type Tracer struct {
	service string
}

// NewTracer creates a tracer. service prefixes every subsegment name.
func NewTracer(service string) *Tracer {
	return &Tracer{service: service}
}

// TraceFunction runs fn inside a subsegment named "<service>.<name>",
// recording any returned error on the subsegment before propagating it.
func (t *Tracer) TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, t.service+"."+name)
	defer seg.Close(nil)

	err := fn(ctx)
	if err != nil {
		seg.AddError(err)
	}
	return err
}

// AddAnnotation attaches an indexed annotation to the current subsegment.
// A no-op outside an active trace.
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}
