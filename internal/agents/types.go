// Package agents runs the three-role project-generation pipeline: an
// architect plans, frontend and backend develop in parallel, and the
// architect integrates the results into a final file set.
package agents

import "time"

// Phase is a stage of a project-generation run.
type Phase string

const (
	PhaseAnalyzing   Phase = "analyzing"
	PhasePlanning    Phase = "planning"
	PhaseDevelopment Phase = "development"
	PhaseIntegration Phase = "integration"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// TaskStatus tracks one assigned task through the run.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is one unit of work assigned to a role.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo"`
	Status      TaskStatus `json:"status"`
}

// Plan is the architect's machine-parsed project breakdown. A run with an
// unparsable plan proceeds with empty task lists.
type Plan struct {
	ProjectName        string   `json:"projectName"`
	Description        string   `json:"description"`
	FrontendTasks      []string `json:"frontendTasks"`
	BackendTasks       []string `json:"backendTasks"`
	SharedRequirements []string `json:"sharedRequirements"`
}

// ProgressUpdate is pushed to subscribers as the run advances.
type ProgressUpdate struct {
	RunID     string    `json:"runId"`
	Phase     Phase     `json:"phase"`
	Agent     string    `json:"agent,omitempty"`
	Message   string    `json:"message"`
	Plan      *Plan     `json:"plan,omitempty"`
	Tasks     []Task    `json:"tasks,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GeneratedFile is one file extracted from a model's output.
type GeneratedFile struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// ProjectResult is the outcome of a completed run.
type ProjectResult struct {
	RunID          string          `json:"runId"`
	Plan           *Plan           `json:"plan"`
	FrontendCode   string          `json:"frontendCode"`
	BackendCode    string          `json:"backendCode"`
	IntegratedCode string          `json:"integratedCode"`
	Files          []GeneratedFile `json:"files"`
	Duration       time.Duration   `json:"-"`
}
