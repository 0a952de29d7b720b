// Package faceswap implements the face-swap proxy endpoint.
//
// The handler owns request decoding, defaulting, and the mapping between
// provider outcomes and HTTP responses. The provider itself is an opaque
// collaborator reached through the Provider interface, so the handler never
// sees credentials or vendor URLs.
package faceswap
