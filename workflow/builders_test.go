package workflow_test

import (
	"strings"
	"testing"

	"github.com/Arbazxkr/SwarmX-sub000/workflow"
)

func TestPipeline_ChainsDependencies(t *testing.T) {
	definition := workflow.Pipeline("p", []workflow.PipelineStep{
		{ID: "one", Agent: "A", Prompt: "first"},
		{ID: "two", Agent: "B", Prompt: "second"},
		{ID: "three", Agent: "C", Prompt: "third"},
	})

	if len(definition.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(definition.Steps))
	}
	if len(definition.Steps[0].DependsOn) != 0 {
		t.Errorf("first step has dependencies: %v", definition.Steps[0].DependsOn)
	}
	if got := definition.Steps[2].DependsOn; len(got) != 1 || got[0] != "two" {
		t.Errorf("third step DependsOn = %v, want [two]", got)
	}
	if !strings.Contains(definition.Steps[1].Input, "{{blackboard.one}}") {
		t.Errorf("second step input = %q, want predecessor placeholder", definition.Steps[1].Input)
	}
}

func TestFanOut_GroupsWorkersAndMerges(t *testing.T) {
	definition := workflow.FanOut("fan",
		[]workflow.PipelineStep{
			{ID: "w1", Agent: "W", Prompt: "a"},
			{ID: "w2", Agent: "W", Prompt: "b"},
		},
		workflow.PipelineStep{ID: "merge", Agent: "M", Prompt: "combine"},
	)

	if len(definition.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(definition.Steps))
	}
	if len(definition.ParallelGroups) != 1 {
		t.Fatalf("parallel groups = %d, want 1", len(definition.ParallelGroups))
	}
	if got := definition.ParallelGroups[0].Parallel; len(got) != 2 {
		t.Errorf("group members = %v, want the two workers", got)
	}

	merge := definition.Steps[2]
	if len(merge.DependsOn) != 2 {
		t.Errorf("merge DependsOn = %v, want both workers", merge.DependsOn)
	}
	for _, id := range []string{"w1", "w2"} {
		if !strings.Contains(merge.Input, "{{blackboard."+id+"}}") {
			t.Errorf("merge input missing placeholder for %s", id)
		}
	}
}
