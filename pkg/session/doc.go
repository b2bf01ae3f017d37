// Package session defines the server-side session record and its storage.
//
// A Session is addressed by an opaque Token carried in a cookie; its ID is
// stable across token rotation and keys per-visitor state such as the toast
// bus. CacheStore persists sessions in any cache.Cache, so the same code runs
// against the in-process cache in development and Redis in production.
package session
