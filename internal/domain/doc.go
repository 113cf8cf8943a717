// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (requests, outcomes, manifests) and contracts (interfaces) only.
package domain
