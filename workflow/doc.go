// Package workflow executes declarative DAGs of agent steps.
//
// A Definition lists immutable Steps with dependencies, optional runtime
// conditions, per-step retry/timeout, and optional parallel groups. The
// Orchestrator drives a readiness loop over the DAG: pending steps whose
// dependencies are all done or skipped become ready; conditional steps
// whose condition evaluates false are skipped and still satisfy their
// dependents, letting conditional branches converge.
//
// Ready steps inside a parallel group run concurrently with an all-complete
// join, so a slow or failing branch never cancels its siblings. Remaining
// ready steps run sequentially in definition order. A state where nothing
// is ready and nothing is terminal is a deadlock and fails the run, as does
// exceeding the run deadline. Structural failures are returned as a Run
// with a failed status, never as an error.
//
// Each run owns a blackboard: step outputs land there under the step's
// output key, and later steps template them in via {{blackboard.key}}
// placeholders in their inputs. The final blackboard can optionally be
// persisted to a Store when the run ends.
package workflow
