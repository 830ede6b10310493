// Package notify delivers workflow step events to interested parties
// without ever blocking the engine. The channel notifier feeds
// in-process subscribers and drops events when the subscriber lags; the
// log notifier writes each transition to the structured log.
package notify
