// Package services defines the shared error taxonomy used by the submitter
// and reconciler to classify failures: informational skips, rejected
// submissions, transient poll faults, terminal remote failures, output
// persistence errors, and store faults.
package services
