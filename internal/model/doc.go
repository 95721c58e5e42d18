// Package model holds the engine-facing Argo Workflows object model.
//
// Types here are plain data: they carry json and yaml tags in the engine's
// camelCase wire format and have no authoring behaviour. Authoring packages
// (dag, task, workflow) build values of these types; the service client sends
// and receives them over the Argo Server REST API.
package model
