// Package websocket streams refresh progress to browser clients.
//
// A Hub fans JSON messages out to every connected Client. Each client has
// a buffered send queue drained by its write pump; a client whose queue is
// full is disconnected rather than allowed to stall the hub. Pipeline step
// transitions reach the hub through ProgressObserver.
package websocket
