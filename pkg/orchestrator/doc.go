// Package orchestrator runs the render pipeline: resolve the form definition,
// apply transformers and decorators, pick a renderer from the registry and,
// for HTML pages, wrap the output in the themed site shell.
package orchestrator
