// Package diag defines the diagnostic model shared by the analysis engine,
// the builtin rules and the renderers.
//
// Diagnostic is the central record: the emitting rule's name, a tri-level
// severity, a short message with optional detail paragraphs, the owning file
// path and the primary source span, plus optional notes and structured fix
// suggestions. Diagnostics are pure values; producers emit them through a
// Reporter and consumers read them out of a Bag.
//
// The package performs no formatting and no IO. Rendering lives in
// internal/diagfmt; collection and ordering policy live here so every
// consumer sees the same deterministic output order: file path, then span
// start, then span end, with emission order breaking ties.
package diag
