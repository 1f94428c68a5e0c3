package ws

import (
	"hr-realtime/internal/chat"
	"hr-realtime/internal/models"
	"hr-realtime/internal/notifier"
)

// BindNotifier subscribes the hub to the in-process notification bus and
// forwards each event to the addressed user's personal room. Events for
// offline users fall through silently; their durable record is read later
// through the notification list API. Returns the unsubscribe function.
func BindNotifier(hub *Hub, bus *notifier.Bus) func() {
	return bus.Subscribe(func(evt notifier.Event) {
		hub.Emit(chat.UserRoom(evt.UserID), models.Event{
			Event: models.EventNotify,
			Data:  evt,
		})
	})
}
