// Package publish announces freshly persisted summaries on a message bus.
//
// An Announcement carries the blob location and its shape, never the
// summary itself; consumers re-read the blob. Kafka and MQTT are supported
// and the kind "none" disables announcing.
package publish
