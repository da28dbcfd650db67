// Package retry retries operations that fail with transient PostgreSQL or
// network errors, waiting with exponential backoff between attempts.
//
// Only connection establishment is retried. Bulk writes are not: a failed
// batch is reported to the caller as is.
//
//	exec := retry.NewExecutor(retry.NewPgClassifier(), retry.NewBackoff(), logger)
//	err := exec.Do(ctx, "connect", func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
