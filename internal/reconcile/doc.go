// Package reconcile keeps an in-memory board and its persisted copy in step.
//
// Local edits are applied to the board immediately and persisted in the
// background. Persistence is a full-state diff: the items the store is
// believed to hold are compared with the desired board, missing ones are
// deleted and everything else is upserted with a sort order recomputed from
// its position. Whenever persisting fails, or another client reports a
// change, the driver refetches the whole list and replaces its board; the
// last snapshot fetched wins.
//
// # Components
//
//   - Plan computes the item diff for a desired board.
//   - BuildBoard turns stored sections and items into a valid board.
//   - EnsureList creates or completes a list from a store template.
//   - Driver runs the optimistic apply, persist and refetch cycle.
package reconcile
