package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jpalomar/gastobot/pkg/events"
	"github.com/jpalomar/gastobot/pkg/eventbus"
	"github.com/jpalomar/gastobot/pkg/models"
)

// MaxSteps bounds the plan/act loop: one plan+act pair per capability plus
// slack. Reaching the bound forces a best-effort terminal render.
const MaxSteps = 6

// FallbackResponseText is the only raw-error-free reply a user ever sees when
// the pipeline cannot produce a substantive one.
const FallbackResponseText = "Sorry, I couldn't process that right now. Please try again."

// Orchestrator drives Planner -> Router -> capability -> Planner until a
// terminal action or a safety bound is hit. Single-threaded per run; the
// hosting layer may run many turns concurrently, each with its own state.
type Orchestrator struct {
	planner      Planner
	renderer     Capability
	capabilities map[models.Action]Capability
	publisher    eventbus.EventPublisher
	logger       *slog.Logger
}

func NewOrchestrator(logger *slog.Logger, planner Planner, renderer Capability, capabilities ...Capability) *Orchestrator {
	registered := make(map[models.Action]Capability, len(capabilities))
	for _, capability := range capabilities {
		registered[capability.Name()] = capability
	}

	return &Orchestrator{
		planner:      planner,
		renderer:     renderer,
		capabilities: registered,
		logger:       logger,
	}
}

// WithEventPublisher attaches an optional turn lifecycle publisher.
func (o *Orchestrator) WithEventPublisher(publisher eventbus.EventPublisher) *Orchestrator {
	o.publisher = publisher

	return o
}

// Run executes one turn and always returns a state with ResponseText set.
// No capability error escapes this boundary.
func (o *Orchestrator) Run(ctx context.Context, initial models.WorkflowState) models.WorkflowState {
	started := time.Now()
	state := initial

	logger := o.logger.With("turn_id", state.TurnID, "external_user_id", state.Identity.ExternalID)
	logger.InfoContext(ctx, "Starting turn", "has_file_ref", state.FileRef != "")

	o.publish(ctx, state.TurnID, events.TurnStarted{
		BaseEvent:      o.baseEvent(events.TurnStartedEvent, state.TurnID),
		ExternalUserID: state.Identity.ExternalID,
		HasFileRef:     state.FileRef != "",
	})

	var lastAction models.Action

	lastNoop := false

	for step := 1; step <= MaxSteps; step++ {
		action, err := o.planner.Plan(ctx, state)
		if err != nil {
			logger.WarnContext(ctx, "Planner failed, terminating turn", "error", err, "step", step)

			return o.finish(ctx, logger, state, step, true, started)
		}

		state = state.WithNextAction(action)
		target := Route(action)

		logger.InfoContext(ctx, "Routing planner decision", "next_action", action, "target", target, "step", step)

		if target == models.ActionRenderAndPost {
			return o.finish(ctx, logger, state, step, false, started)
		}

		capability, ok := o.capabilities[target]
		if !ok {
			logger.WarnContext(ctx, "No capability registered for action, terminating", "action", target)

			return o.finish(ctx, logger, state, step, true, started)
		}

		capabilityStarted := time.Now()

		next, err := capability.Execute(ctx, state)
		if err != nil {
			// Transient or validation failure inside the capability: the turn
			// continues with the state unchanged, bounded by the step cap.
			logger.WarnContext(ctx, "Capability failed, continuing with unchanged state",
				"action", target, "error", err, "step", step)

			next = state
		}

		changed := !next.Equal(state)

		o.publish(ctx, state.TurnID, events.CapabilityExecuted{
			BaseEvent: o.baseEvent(events.CapabilityExecutedEvent, state.TurnID),
			Action:    target,
			Step:      step,
			Changed:   changed,
			Duration:  time.Since(capabilityStarted),
		})

		if !changed && lastNoop && lastAction == target {
			logger.WarnContext(ctx, "Stuck loop detected, forcing terminal render", "action", target, "step", step)

			return o.finish(ctx, logger, next, step, true, started)
		}

		lastNoop = !changed
		lastAction = target
		state = next
	}

	logger.WarnContext(ctx, "Step bound reached without terminal action, rendering best-effort reply")

	return o.finish(ctx, logger, state, MaxSteps, true, started)
}

func (o *Orchestrator) finish(ctx context.Context, logger *slog.Logger, state models.WorkflowState, steps int, forced bool, started time.Time) models.WorkflowState {
	final, err := o.renderer.Execute(ctx, state)
	if err != nil {
		logger.WarnContext(ctx, "Renderer failed, using fallback reply", "error", err)

		final = state
	}

	final = final.WithResponseText(FallbackResponseText)

	o.publish(ctx, final.TurnID, events.TurnCompleted{
		BaseEvent: o.baseEvent(events.TurnCompletedEvent, final.TurnID),
		Steps:     steps,
		Duration:  time.Since(started),
		Forced:    forced,
	})

	logger.InfoContext(ctx, "Turn completed", "steps", steps, "forced", forced, "duration", time.Since(started))

	return final
}

func (o *Orchestrator) baseEvent(eventType events.EventType, turnID string) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TurnID:    turnID,
	}
}

func (o *Orchestrator) publish(ctx context.Context, key string, event eventbus.Event) {
	if o.publisher == nil {
		return
	}

	if err := o.publisher.Publish(ctx, key, event); err != nil {
		o.logger.DebugContext(ctx, "Failed to publish turn event", "event_type", event.GetType(), "error", err)
	}
}
