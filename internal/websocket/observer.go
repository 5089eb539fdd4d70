package websocket

import (
	"context"

	"energycli/internal/operations"
)

// ProgressObserver forwards pipeline step transitions to hub clients.
func ProgressObserver(hub *Hub) operations.Observer {
	return operations.ObserverFunc(func(ctx context.Context, event operations.ProgressEvent) {
		hub.Broadcast(ctx, TypeProgress, event)
	})
}
