// Package auth provides the operator credential adapters: bcrypt password
// hashing, HS256 session tokens and a private file holding the current token.
package auth
