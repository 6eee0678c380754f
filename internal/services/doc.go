// Package services defines the interfaces for external collaborators the
// task engine consumes but does not implement.
//
// # Notifier
//
// Downstream chat integration is informed of task events after they are
// persisted; delivery is best effort and never part of the state machine's
// correctness.
//
//   - [RedisNotifier] publishes JSON events to a Redis channel, where the
//     chat bot picks them up and posts task cards to group chats.
//   - [LogNotifier] logs events locally when no Redis address is configured.
//
// # MediaResolver
//
// Media bytes never pass through this service; tasks store opaque file IDs.
// [ProxyResolver] talks to the media proxy over HTTP to resolve a file ID to
// a fetchable URL and to request a purge of a deleted task's media.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrServiceUnavailable] : collaborator not configured or unreachable
//   - [shared.ErrMediaNotFound] : proxy does not know the file ID
package services
