// Package toast builds desktop toast notifications, attaches listeners to
// their lifecycle events and submits them through a platform Backend.
//
// The flow is linear: Build or Parse a Content, wrap it with NewRequest,
// attach listeners with Subscribe (or OnActivated, OnDismissed, OnFailed),
// Resolve a Notifier and Submit the request. Backends deliver Activated,
// Dismissed and Failed events later on their own dispatch goroutine, in any
// order, possibly long after Submit returned, or never.
//
// Keeping the process alive long enough to see events is the caller's job.
// Recorder.Wait gives short lived programs a bounded wait.
package toast
