// Package blackboard provides the shared scratchpad for workflow runs.
//
// A Board is owned by exactly one workflow run. Completed steps write their
// outputs into it and later steps read those outputs back through template
// resolution: every "{{blackboard.key}}" placeholder in a step's input is
// replaced with the stringified current value, or left untouched when the
// key is absent.
//
// The Store interface and its Redis implementation archive finished-run
// boards for consumers outside the running process. Archiving is strictly
// optional; workflow execution never depends on it.
package blackboard
