// Package auth provides the credential primitives of the back-office service.
//
// This package implements:
//   - The immutable Principal attached to an authenticated request
//   - Salted one-way password hashing (bcrypt) with constant-time verification
//
// Token encoding lives in package tokens; request gating lives in package middleware.
package auth
