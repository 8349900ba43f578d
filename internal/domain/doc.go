// Package domain contains the core entities of the progress service:
// flashcards, the progress events users generate while studying them, the
// per-user interaction aggregates those events fold into, and users
// themselves. Entities validate their own invariants; persistence and
// transport concerns live elsewhere.
package domain
