// Package vrchat implements the upstream authentication handshake and the
// authenticated session handle used by the relay handlers.
//
// A login runs the fixed sequence: Basic-auth probe of the current-user
// endpoint, TOTP verification when the probe body signals a second factor,
// then a confirmation fetch of the current user. The session credential is
// the "auth" cookie the upstream sets during that sequence, held in a
// per-account cookie jar.
package vrchat
