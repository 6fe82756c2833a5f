// Package repository implements the generic resource-repository engine shared
// by every resource kind of the mock platform.
//
// The engine is written against the Kind interface only. A kind supplies the
// create logic for its drafts, a static table of update actions, and
// optionally a chain of projections applied to every resource on its way out.
// The engine owns everything else:
//
//   - Envelope: id, version, createdAt and lastModifiedAt (NewBase)
//   - Optimistic concurrency: an update whose expected version differs from the
//     stored one fails with ConcurrentModificationError and changes nothing
//   - Atomic multi-action updates: actions run in order against a private
//     staging copy; the first failing action aborts the whole request
//   - No-op detection: if the staging copy equals the stored resource the
//     version is not bumped and nothing is written
//   - Query: predicate filtering, sorting and offset/limit pagination
//   - Projection: kinds redact fields (secrets) on a copy, never on the
//     stored document
//
// Thread Safety:
//
// Update and Delete run inside a per-resource critical section provided by
// the document store, so concurrent writers of one resource are serialized
// while writers of different resources proceed in parallel. Stored documents
// are never mutated in place; readers always see a complete version.
//
// Usage:
//
//	store := storage.NewMemoryStore()
//	zones := repository.New[*Zone, ZoneDraft](store, zoneKind{})
//
//	zone, err := zones.Create(ctx, "my-project", ZoneDraft{Key: "EU"})
//	setKey, err := repository.NewAction("setKey", map[string]any{"key": "EMEA"})
//	zone, err = zones.Update(ctx, "my-project", zone.ID, repository.UpdateRequest{
//	    Version: zone.Version,
//	    Actions: []repository.Action{setKey},
//	})
//	page, err := zones.Query(ctx, "my-project", repository.QueryParams{Where: []string{`key = "EMEA"`}})
package repository
