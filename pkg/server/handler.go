// Package server wires the host ABI, extension registry, channel fabric and
// policy shaper into a single per-request entry point, and exposes the
// operational HTTP surface around it: health/readiness probes, a
// lookup-data refresh admin endpoint, and a thin reference binding for the
// guest-facing transport that spec.md explicitly places out of scope.
package server

import (
	"context"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/internal/telemetry"
	"github.com/marmos91/oakd/pkg/channel"
	"github.com/marmos91/oakd/pkg/extension"
	"github.com/marmos91/oakd/pkg/lookup"
	"github.com/marmos91/oakd/pkg/policy"
	"github.com/marmos91/oakd/pkg/wasmhost"
)

// Handler binds a compiled guest module, the current lookup data and a
// policy shaper into the single operation this repo exists to provide:
// turning request bytes into a constant-shape Response.
type Handler struct {
	compiled *wasmhost.CompiledModule
	lookups  *lookup.Manager
	shaper   *policy.Shaper
}

// NewHandler constructs a Handler. None of its arguments are optional: a
// Handler with a nil collaborator is a construction bug, not a runtime
// condition to guard against.
func NewHandler(compiled *wasmhost.CompiledModule, lookups *lookup.Manager, shaper *policy.Shaper) *Handler {
	return &Handler{compiled: compiled, lookups: lookups, shaper: shaper}
}

// Handle runs one guest invocation against requestBytes and returns the
// policy-shaped Response: exactly Policy.ConstantResponseSizeBytes bytes,
// never returned before Policy.ConstantProcessingTime has elapsed.
//
// Per-request wiring — the extension set and channel switchboard — is built
// fresh on every call and torn down before Handle returns, so nothing here
// outlives a single invocation.
func (h *Handler) Handle(ctx context.Context, requestBytes []byte) policy.Response {
	ctx, span := telemetry.StartHandlerSpan(ctx)
	defer span.End()

	lc := logger.NewLogContext().WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	snapshot := h.lookups.CreateLookupData()

	resp := h.shaper.Run(ctx, func(ctx context.Context) (policy.Response, error) {
		ctx, shaperSpan := telemetry.StartShaperSpan(ctx)
		defer shaperSpan.End()

		switchboard := channel.NewSwitchboard()
		hostEnd, guestEnd := channel.NewPair()

		factories := map[extension.Handle]extension.Factory{
			extension.HandleLookup:      extension.NewLookupFactory(snapshot),
			extension.HandleWorkloadLog: extension.NewWorkloadLogFactory(),
			extension.HandleTesting:     extension.NewTestingFactory(),
		}
		extensions := extension.NewSet(factories)
		defer extensions.TerminateAll()

		if testingExt, ok := extensions.Get(extension.HandleTesting); ok {
			if chExt, ok := testingExt.(extension.ChannelExtension); ok {
				chExt.SetEndpoint(hostEnd)
			}
		}
		switchboard.Bind(channel.Handle(extension.HandleTesting), guestEnd)
		defer switchboard.CloseAll()

		respBytes, err := h.compiled.Run(ctx, wasmhost.HostDeps{
			Request:     requestBytes,
			Extensions:  extensions,
			Switchboard: switchboard,
		})
		if err != nil {
			telemetry.RecordError(ctx, err)
			telemetry.SetStatus(ctx, codes.Error, err.Error())
			return policy.Response{}, err
		}
		telemetry.SetAttributes(ctx, telemetry.ResponseLength(len(respBytes)))
		return policy.Response{
			Status: policy.StatusSuccess,
			Body:   respBytes,
			Length: uint64(len(respBytes)),
		}, nil
	})

	telemetry.SetAttributes(ctx, telemetry.ShapedStatus(resp.Status.String()))

	lc = lc.WithShaped(resp.Status.String())
	logger.InfoCtx(logger.WithContext(ctx, lc), "request handled",
		logger.ResponseLength(int(resp.Length)),
		logger.DurationMs(lc.DurationMs()),
	)

	return resp
}
