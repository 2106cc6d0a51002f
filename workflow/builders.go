package workflow

import "fmt"

// PipelineStep is the input to the convenience builders: a step ID, the
// agent to run, and its base prompt.
type PipelineStep struct {
	ID     string
	Agent  string
	Prompt string
}

// Pipeline builds a linear workflow: each step depends on its predecessor
// and templates the predecessor's output into its own input.
func Pipeline(name string, steps []PipelineStep) Definition {
	definition := Definition{Name: name, Steps: make([]Step, 0, len(steps))}
	for i, ps := range steps {
		step := Step{
			ID:    ps.ID,
			Agent: ps.Agent,
			Input: ps.Prompt,
		}
		if i > 0 {
			prev := steps[i-1].ID
			step.DependsOn = []string{prev}
			step.Input = fmt.Sprintf("%s\n\n{{blackboard.%s}}", ps.Prompt, prev)
		}
		definition.Steps = append(definition.Steps, step)
	}
	return definition
}

// FanOut builds a fan-out/fan-in workflow: the workers form one parallel
// group, and the merge step depends on all of them with each worker's
// output templated into its input.
func FanOut(name string, workers []PipelineStep, merge PipelineStep) Definition {
	definition := Definition{Name: name, Steps: make([]Step, 0, len(workers)+1)}

	workerIDs := make([]string, 0, len(workers))
	mergeInput := merge.Prompt
	for _, worker := range workers {
		definition.Steps = append(definition.Steps, Step{
			ID:    worker.ID,
			Agent: worker.Agent,
			Input: worker.Prompt,
		})
		workerIDs = append(workerIDs, worker.ID)
		mergeInput += fmt.Sprintf("\n\n{{blackboard.%s}}", worker.ID)
	}

	definition.Steps = append(definition.Steps, Step{
		ID:        merge.ID,
		Agent:     merge.Agent,
		Input:     mergeInput,
		DependsOn: workerIDs,
	})
	definition.ParallelGroups = []ParallelGroup{{Name: name + "-workers", Parallel: workerIDs}}
	return definition
}
