package intent

import (
	"context"
	"fmt"

	"github.com/zappilot/dustzap/pkg/dzerrors"
)

// Registry maps an intent-type string to the handler that executes it
// (spec.md §4.10). Only "dustZap" ships today, but the registry shape
// keeps the door open for future intent types without touching C9.
type Registry struct {
	handlers map[string]*Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

func (r *Registry) Register(intentType string, h *Handler) {
	r.handlers[intentType] = h
}

// Dispatch routes to the handler for intentType, returning NOT_FOUND for
// an unknown type. The handler's Execute validates the request envelope
// and params.
func (r *Registry) Dispatch(ctx context.Context, intentType string, req Request) (*Result, *dzerrors.Error) {
	h, ok := r.handlers[intentType]
	if !ok {
		return nil, dzerrors.New(dzerrors.KindNotFound, fmt.Sprintf("unknown intent type %q", intentType))
	}
	return h.Execute(ctx, req)
}
