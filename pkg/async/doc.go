// Package async runs background work with panic recovery and timeouts.
//
// SafeGo fires and forgets a task, logging its failure:
//
//	async.SafeGo(ctx, logger, 30*time.Second, "catalog warm-up", func(ctx context.Context) error {
//		_, err := catalog.Load(ctx, provider)
//		return err
//	})
//
// Run is the synchronous form: it bounds fn by a timeout and returns a panic
// as an error. The catalog refresher invalidates each cache layer through it.
package async
