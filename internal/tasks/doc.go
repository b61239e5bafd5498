// Package tasks fans reminder notifications out to the team with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlanReminders] : builds one [Job] per person who needs a nudge
//     - Unconfirmed active members with a handle are asked to confirm participation
//     - Anyone with assigned songs is told how many and which ones
//
//  2. [Broadcaster.Run] : delivers jobs through a [notify.Gateway]
//     - A fixed worker pool pulls jobs from a channel
//     - A shared limiter keeps deliveries under the gateway's rate limit
//     - Failures are collected per job; one failed delivery never stops the rest
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters and a message.
// Updates use select with default to prevent blocking.
package tasks
