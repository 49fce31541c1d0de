// Package workflow runs the batch export loop: it claims queued jobs in
// order, drives each one through its stages, and packages the delivered
// files when the queue drains.
//
// Jobs composite strictly sequentially. Concurrent rendering would contend
// for decoder resources and desync audio, so the manager holds an exclusive
// workspace lock and processes one job at a time with a short delay between
// jobs. The template is loaded once per batch and shared read-only, and the
// fluidity trial on the first job feeds the encode settings for the rest of
// the batch.
package workflow
