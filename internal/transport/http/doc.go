// Package http implements the HTTP query surface over a loaded energy
// summary. Handlers are thin: they parse the request, call the service
// layer and render JSON with go-chi/render.
//
// # Routes
//
//	GET /api/v1/summary         full summary, newest year first
//	GET /api/v1/summary/info    entry count and years served
//	POST /api/v1/summary/refresh rerun the pipeline, 202 or 409
//	GET /api/v1/summary/refresh  status of the latest refresh
//	GET /api/v1/summary/{year}  one year, 404 when absent
//	GET /api/health             liveness plus summary info
//	GET /api/version            build information
//	GET /ws                     refresh progress stream (WebSocket)
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are produced by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/year-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "No data for year 1999",
//	    "instance": "/api/v1/summary/1999"
//	}
package http
