// Package models defines the data model for the playlist builder.
//
// The persistent surface is intentionally small: a build-history record per
// completed (or dry-run) playlist build. Pipeline candidates are owned by a
// single build invocation and are never persisted.
//
// Model is the base interface implemented by persisted entities, and
// Repository[T] is the generic data-access contract implemented in
// internal/repositories.
package models
