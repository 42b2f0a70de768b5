// Package crawler explores the autocomplete service's prefix tree.
//
// # Architecture
//
// A crawl is made of three pieces:
//
//   - State: the visited set, the result set and the request counter,
//     guarded by a single mutex. Every merge is written through to the
//     checkpoint store while that mutex is held.
//   - Explorer: depth-first exploration of one prefix subtree. A prefix is
//     claimed, queried once after a fixed delay, and its 26 children are
//     explored only when the query returned at least one name.
//   - Scheduler: a bounded worker pool that runs one Explorer task per seed
//     letter and waits for all of them.
//
// # Usage
//
//	state := crawler.NewState(snapshot, store, logger)
//	explorer := crawler.NewExplorer(client, state, crawler.WithMaxDepth(5))
//	err := crawler.NewScheduler(explorer, crawler.WithWorkers(4)).Run(ctx)
//
// # Cancellation
//
// When the context is cancelled, prefixes whose query was abandoned are
// released from the visited set and nothing is saved for them, so a resumed
// crawl queries them again.
package crawler
