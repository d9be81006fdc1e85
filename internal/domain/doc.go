// Package domain holds the core model types, repository interfaces, and
// sentinel errors. It depends on nothing outside the standard library;
// adapters implement the interfaces defined here.
package domain
