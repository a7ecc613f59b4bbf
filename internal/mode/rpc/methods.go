// ABOUTME: Handler implementations for intent RPC methods (telemetry in, state out)
// ABOUTME: Dispatches requests to the engine with input validation

package rpc

import (
	"encoding/json"
	"errors"

	"github.com/mauromedda/intentd/internal/intent"
	pilog "github.com/mauromedda/intentd/internal/log"
	"github.com/mauromedda/intentd/internal/telemetry"
)

// HandlerFunc processes an RPC request's params and returns a Response.
type HandlerFunc func(params json.RawMessage) Response

// Router dispatches RPC requests to registered handlers by method name.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter creates a Router with an empty handler registry.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register associates a method name with a handler function.
func (r *Router) Register(method string, handler HandlerFunc) {
	r.handlers[method] = handler
}

// Handle dispatches a request to the registered handler, or returns
// a method-not-found error if no handler is registered.
func (r *Router) Handle(req Request) Response {
	h, ok := r.handlers[req.Method]
	if !ok {
		return Response{
			ID:    req.ID,
			Error: NewMethodNotFoundError(req.Method),
		}
	}

	resp := h(req.Params)
	resp.ID = req.ID
	return resp
}

// Deps holds what the handlers call into. Observer is registered with the
// engine by the start method.
type Deps struct {
	Engine   *intent.Engine
	Observer intent.Observer
}

// RegisterHandlers wires all intent method handlers into the given router.
func RegisterHandlers(r *Router, d *Deps) {
	r.Register(MethodRecordChange, handleRecordChange(d))
	r.Register(MethodCursorMove, handleCursorMove(d))
	r.Register(MethodUndoRedo, handleUndoRedo(d))
	r.Register(MethodGetIntent, handleGetIntent(d))
	r.Register(MethodGetMetrics, handleGetMetrics(d))
	r.Register(MethodGetStatus, handleGetStatus(d))
	r.Register(MethodTick, handleTick(d))
	r.Register(MethodStart, handleStart(d))
	r.Register(MethodStop, handleStop(d))
}

// TransitionNotifier returns an observer that pushes each transition to the
// client as an intent_changed notification.
func (s *Server) TransitionNotifier() intent.Observer {
	return func(tr intent.Transition) {
		if err := s.Notify(NotifyIntentChanged, telemetry.UpdateOf(tr)); err != nil {
			pilog.Warn("rpc: %v", err)
		}
	}
}

func handleRecordChange(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		// A missing event is recorded like an empty one.
		var ev telemetry.ChangeEvent
		if len(params) > 0 {
			if err := json.Unmarshal(params, &ev); err != nil {
				return Response{Error: NewInvalidParamsError(err.Error())}
			}
		}
		d.Engine.RecordChange(ev.Change())
		return Response{Result: AckResult{OK: true}}
	}
}

func handleCursorMove(d *Deps) HandlerFunc {
	return func(params json.RawMessage) Response {
		var ev telemetry.CursorMoveEvent
		if len(params) > 0 {
			if err := json.Unmarshal(params, &ev); err != nil {
				return Response{Error: NewInvalidParamsError(err.Error())}
			}
		}
		d.Engine.RecordCursorMoves(ev.Moves())
		return Response{Result: AckResult{OK: true}}
	}
}

func handleUndoRedo(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		d.Engine.RecordUndoRedo()
		return Response{Result: AckResult{OK: true}}
	}
}

func handleGetIntent(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		return Response{Result: telemetry.StateOf(d.Engine)}
	}
}

func handleGetMetrics(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		m := d.Engine.Snapshot()
		return Response{Result: MetricsResult{Metrics: m, Total: m.Total()}}
	}
}

func handleGetStatus(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		st := StatusResult{
			Running:  d.Engine.Running(),
			Interval: d.Engine.Interval().String(),
			Intent:   d.Engine.CurrentIntent().Key,
		}
		if prev, ok := d.Engine.PreviousIntent(); ok {
			st.Previous = prev.Key
		}
		return Response{Result: st}
	}
}

func handleTick(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		d.Engine.Tick()
		return Response{Result: telemetry.StateOf(d.Engine)}
	}
}

func handleStart(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		err := d.Engine.Start(d.Observer)
		switch {
		case errors.Is(err, intent.ErrAlreadyRunning):
			return Response{Error: NewAlreadyRunningError()}
		case err != nil:
			return Response{Error: NewInternalError(err.Error())}
		}
		return Response{Result: AckResult{OK: true}}
	}
}

func handleStop(d *Deps) HandlerFunc {
	return func(_ json.RawMessage) Response {
		if !d.Engine.Running() {
			return Response{Error: NewNotRunningError()}
		}
		d.Engine.Stop()
		return Response{Result: AckResult{OK: true}}
	}
}
