// Package collab holds thin JSON-over-HTTP adapters for the platform's
// collaborator services: embeddings, matching and recommendations. Each
// adapter implements the corresponding dispatch interface; the services'
// internals are out of scope here.
package collab
