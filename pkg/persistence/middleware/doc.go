// Package middleware wraps ports.SessionStore implementations with extra
// behaviour. NewEncryptionMiddleware seals sessions at rest with AES-GCM and
// supports key rotation through fallback keys.
package middleware
