// Package queue persists processing jobs in SQLite.
//
// A job is one source video plus fixed settings, advancing through the
// pipeline stage statuses strictly forward: pending → loading → transcribing →
// translating → dubbing → rendering → converting → validating → completed.
// Any stage can move a job to failed. Jobs survive process restarts; jobs
// stuck in a processing status from a crashed run are reset to pending on
// startup.
package queue
