package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rafiq-chat/internal/ai"
	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/metrics"
)

const agentTemperature = 0.7

// ErrStageFailed is returned when any pipeline stage call fails. The run
// delivers no partial results.
var ErrStageFailed = errors.New("project generation stage failed")

// Orchestrator drives the architect/frontend/backend pipeline over the
// model transport.
type Orchestrator struct {
	registry *ai.Registry
	caller   ai.Caller
	log      *zap.Logger
}

// NewOrchestrator creates an orchestrator using the registry's role-tagged
// models.
func NewOrchestrator(registry *ai.Registry, caller ai.Caller) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		caller:   caller,
		log:      logging.L(),
	}
}

func (o *Orchestrator) callRole(ctx context.Context, role ai.AgentRole, roleTitle, prompt string) (string, error) {
	model := o.registry.ForAgentRole(role)
	messages := []ai.Message{{Role: ai.RoleUser, Content: prompt}}
	return o.caller.Complete(ctx, messages, model, agentSystemPrompt(roleTitle), agentTemperature)
}

// Execute runs the full pipeline for one project request. Progress updates
// are delivered synchronously to the callback when it is non-nil. A failure
// in any stage aborts the run; no partial result is returned.
func (o *Orchestrator) Execute(ctx context.Context, runID, prompt string, progress func(ProgressUpdate)) (*ProjectResult, error) {
	start := time.Now()
	m := metrics.Get()

	notify := func(update ProgressUpdate) {
		update.RunID = runID
		update.Timestamp = time.Now()
		if progress != nil {
			progress(update)
		}
	}
	timePhase := func(phase Phase, began time.Time) {
		m.AgentPhaseDuration.WithLabelValues(string(phase)).Observe(time.Since(began).Seconds())
	}
	fail := func(phase Phase, err error) (*ProjectResult, error) {
		o.log.Error("project generation failed",
			zap.String("run_id", runID),
			zap.String("phase", string(phase)),
			zap.Error(err))
		m.AgentRunsTotal.WithLabelValues("failed").Inc()
		notify(ProgressUpdate{Phase: PhaseFailed, Message: "Project generation failed"})
		return nil, ErrStageFailed
	}

	// Phase 1: architect analyzes and plans.
	notify(ProgressUpdate{Phase: PhaseAnalyzing, Agent: "architect", Message: "Analyzing project requirements..."})
	phaseStart := time.Now()

	planText, err := o.callRole(ctx, ai.RoleArchitect, "System Architect", architectPlanPrompt(prompt))
	if err != nil {
		return fail(PhaseAnalyzing, err)
	}
	timePhase(PhaseAnalyzing, phaseStart)

	plan := ParsePlan(planText)
	if plan == nil {
		// Degrade to generating with only the raw request as context.
		o.log.Warn("architect plan not parsable, proceeding with empty task lists",
			zap.String("run_id", runID))
		plan = &Plan{Description: prompt}
	}
	if plan.Description == "" {
		plan.Description = prompt
	}

	tasks := assignTasks(plan)
	notify(ProgressUpdate{Phase: PhasePlanning, Agent: "architect", Message: "Project plan created", Plan: plan, Tasks: tasks})

	// Phase 2: frontend and backend develop concurrently.
	notify(ProgressUpdate{Phase: PhaseDevelopment, Message: "Agents starting work..."})
	phaseStart = time.Now()

	var (
		wg                        sync.WaitGroup
		frontendCode, backendCode string
		frontendErr, backendErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		frontendCode, frontendErr = o.callRole(ctx, ai.RoleFrontend, "Frontend Developer", frontendPrompt(plan))
	}()
	go func() {
		defer wg.Done()
		backendCode, backendErr = o.callRole(ctx, ai.RoleBackend, "Backend Developer", backendPrompt(plan))
	}()
	wg.Wait()
	timePhase(PhaseDevelopment, phaseStart)

	if frontendErr != nil {
		return fail(PhaseDevelopment, frontendErr)
	}
	if backendErr != nil {
		return fail(PhaseDevelopment, backendErr)
	}

	// Phase 3: architect integrates both outputs.
	notify(ProgressUpdate{Phase: PhaseIntegration, Agent: "architect", Message: "Integrating components..."})
	phaseStart = time.Now()

	integrated, err := o.callRole(ctx, ai.RoleArchitect, "System Architect", integrationPrompt(frontendCode, backendCode))
	if err != nil {
		return fail(PhaseIntegration, err)
	}
	timePhase(PhaseIntegration, phaseStart)

	result := &ProjectResult{
		RunID:          runID,
		Plan:           plan,
		FrontendCode:   frontendCode,
		BackendCode:    backendCode,
		IntegratedCode: integrated,
		Files:          ParseGeneratedCode(integrated),
		Duration:       time.Since(start),
	}

	m.AgentRunsTotal.WithLabelValues("success").Inc()
	notify(ProgressUpdate{Phase: PhaseDone, Message: "Project generated successfully"})
	o.log.Info("project generation completed",
		zap.String("run_id", runID),
		zap.Int("files", len(result.Files)),
		zap.Duration("took", result.Duration))
	return result, nil
}

func assignTasks(plan *Plan) []Task {
	var tasks []Task
	for i, desc := range plan.FrontendTasks {
		tasks = append(tasks, Task{
			ID:          fmt.Sprintf("frontend-%d", i),
			Description: desc,
			AssignedTo:  "frontend",
			Status:      TaskPending,
		})
	}
	for i, desc := range plan.BackendTasks {
		tasks = append(tasks, Task{
			ID:          fmt.Sprintf("backend-%d", i),
			Description: desc,
			AssignedTo:  "backend",
			Status:      TaskPending,
		})
	}
	return tasks
}
