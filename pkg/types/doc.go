// Package types defines the entity types, store configuration, and standard
// errors shared by the notereel store, domain service, recording pipeline,
// and export service.
package types
