// Package poll coordinates repeated reads of the upstream API.
//
//   - [Group] collapses concurrent requests for the same key into one call
//     (golang.org/x/sync/singleflight).
//   - [Latest] lets a newer request for a key supersede an older one: the
//     older call's context is cancelled and its result discarded.
//   - [Poller] refreshes a value on a fixed interval and keeps the most
//     recent result for readers. Its fetches go through a [Latest], so a
//     manual refresh replaces a slow fetch instead of queueing behind it.
//
// The stats dashboard polls every [DefaultInterval].
package poll
