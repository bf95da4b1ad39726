// Package api exposes the vocabulary service over HTTP. Handlers decode and
// validate JSON requests, call the service and translate its error kinds into
// status codes and a machine-readable "kind" field. Routes are registered on a
// chi router by VocabularyHandler.Routes.
package api
