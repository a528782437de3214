// Package session tracks pending QR-login sessions.
//
// A browser that wants to sign in via QR code registers a pending
// session, renders its ID as a QR code, and polls for approval. An
// already-authenticated device scans the code and approves the
// session, attaching the user and a freshly issued token. Pending
// sessions live for five minutes and are swept periodically.
//
// Two stores are provided: Memory for single-process deployments
// (sessions are lost on restart, which is acceptable for a
// five-minute artifact) and Redis for multi-process ones.
package session
