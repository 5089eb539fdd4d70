// Package app wires the energy summary components together.
//
// NewPipeline assembles the row source, normalizer, builder and blob store
// selected by the configuration into an operations.Pipeline. NewApplication
// builds the HTTP query server over a loaded summary: chi router, the
// middleware chain, RFC 7807 error handling and the Prometheus endpoint.
//
// OpenStore selects the file or MySQL backend and NewPublisher the Kafka or
// MQTT announcer. WithRefresh and WithHub add the background refresh routes
// and the /ws progress stream to the server.
//
// # Usage
//
//	application := app.NewApplication(cfg, summary, telemetry, logger)
//	if err := application.Run(ctx); err != nil {
//	    return err
//	}
//
// Run blocks until ctx is cancelled or the listener fails, then shuts the
// server down within Server.ShutdownTimeout.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The package never
// calls os.Exit, leaving the exit code to the command.
package app
