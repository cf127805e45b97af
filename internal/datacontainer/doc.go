// Package datacontainer implements the chart data containers and the
// extension mechanism that attaches behavior modules to them.
//
// Ownership model:
//   - A Hub is the arena. It owns every Container it created and indexes the
//     extensions that are currently attached to at least one of them.
//   - Containers and extensions refer to each other only through opaque IDs
//     (ContainerID, ExtensionID) resolved through the hub, never through raw
//     back-pointers stored on both sides.
//   - An extension is bound to the hub of the first container it is attached
//     to, until Release.
//
// Dispatch model:
//   - Container.PostEvent calls HandleEvent on every attached extension in
//     attachment order, threading the payload (a left fold).
//   - Base.PostEvent calls Container.PostEvent on every attached container in
//     attachment order, threading the payload the same way.
//   - Both folds iterate over a snapshot taken under the hub lock; the lock is
//     never held while user hooks run, so hooks may attach, detach or post.
package datacontainer
