package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/classbell/internal/core/notify"
)

// RegisterDebugLogger logs bus activity on logger. Events carry the
// recipient as user_id. A dropped event means a lost notification and logs
// at warn; handler panics log at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	entry := func(e *zerolog.Event, event Event, payload any) *zerolog.Event {
		e = e.Str("event", string(event))
		if a, ok := payload.(notify.Addressed); ok {
			e = e.Str("user_id", a.Recipient())
		}
		return e
	}

	bus.OnPublish(func(event Event, payload any) {
		entry(logger.Debug(), event, payload).Msg("event queued")
	})

	bus.OnSubscribe(func(event Event) {
		logger.Debug().Str("event", string(event)).Msg("handler subscribed")
	})

	bus.OnDrop(func(event Event, payload any) {
		entry(logger.Warn(), event, payload).Msg("event dropped, notification lost")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		entry(logger.Error(), event, payload).
			Str("panic", fmt.Sprint(recovered)).
			Msg("event handler panicked")
	})
}
