package remix

import "strings"

// TaskTypeSocialTemplate is the only task type the execution phase consumes.
// Other types in a plan are ignored, not errored.
const TaskTypeSocialTemplate = "socialMediaTemplate"

// PlanTaskCount is the number of tasks the director is instructed to emit.
const PlanTaskCount = 4

// Task is one independent synthesis brief. Prompt is a complete,
// self-contained natural-language brief carrying its asset references as
// @label tokens and explicit hex colors.
//
// Dependencies is reserved: it rides the wire schema but the executor fans
// out unconditionally and never schedules by it.
type Task struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Description  string   `json:"description"`
	Prompt       string   `json:"prompt"`
	Dependencies []string `json:"dependencies"`
}

// Plan is the director's structured output.
type Plan struct {
	Tasks []Task `json:"tasks"`
}

// TemplateTasks returns the tasks of the expected type, in plan order.
func (p *Plan) TemplateTasks() []Task {
	if p == nil {
		return nil
	}
	var out []Task
	for _, t := range p.Tasks {
		if strings.TrimSpace(t.Type) == TaskTypeSocialTemplate {
			out = append(out, t)
		}
	}
	return out
}
