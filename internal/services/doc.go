// Package services holds cross-cutting helpers shared by the external-tool
// adapters and HTTP clients: the sentinel error taxonomy and request-scoped
// context annotations.
package services
