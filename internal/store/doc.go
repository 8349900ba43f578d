// Package store defines the persistence interfaces the service layer depends
// on, together with the shared error taxonomy all implementations map their
// backend errors into. The PostgreSQL implementations live in
// internal/platform/postgres.
package store
