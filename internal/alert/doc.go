// Package alert scans licenses and equipment for upcoming dates and delivers the resulting notifications.
//
// A run has two steps, usually started by one scheduler tick:
//
//  1. Scanner.RunAll creates notifications for every recipient whose configured day-set contains
//     the exact number of calendar days left before an asset date. A notification with the same
//     recipient, type, asset and milestone inside the dedup window suppresses a new one.
//  2. Worker.ProcessUnsent emails a bounded batch of notifications that are not sent yet.
//     Recipients with email disabled are marked sent without contacting the Sender.
//
// Failures of single assets, recipients or notifications are logged and counted; they never stop a run.
package alert
