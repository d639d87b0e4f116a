// Package domain contains the core vocabulary of the Cascade engine:
// state type descriptors, per-owner slots, pending-update targets,
// transition events and the errors shared across the module.
package domain
