// Package tables registers the shop's collections with the core registry.
// Import it for side effects wherever a core.Service is built.
package tables
