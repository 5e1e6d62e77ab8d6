// Package unifier consolidates per-player match-log tables into one table.
//
// A run has four steps:
//
//  1. Discover: list the tables whose name ends with the source suffix,
//     excluding the destination and reserved names, and skipping names that
//     are not safe identifiers.
//  2. Reconcile: describe each source and merge its columns into a Registry.
//     A column observed with more than one declared type becomes the
//     backend's text type.
//  3. Recreate: drop the destination and create it with the reconciled columns.
//  4. Copy: append every source's rows with one INSERT ... SELECT per source,
//     selecting NULL for columns the source lacks.
//
// Steps 2 to 4 run in a single transaction. If any of them fails the
// destination is left exactly as it was before the run.
package unifier
