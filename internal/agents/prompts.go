package agents

import (
	"fmt"
	"strings"
)

const fileFormatRule = "Format each file as:\n```typescript file=\"path/to/file.ts\"\n// code\n```"

func architectPlanPrompt(userPrompt string) string {
	return fmt.Sprintf(`You are the System Architect. Analyze this project request and create a detailed plan.

User Request: %s

Break down the project into specific tasks for:
1. Frontend Developer (UI components, styling, user interactions)
2. Backend Developer (APIs, data handling, server logic)

Respond in JSON format:
{
  "projectName": "...",
  "description": "...",
  "frontendTasks": ["task1", "task2"],
  "backendTasks": ["task1", "task2"],
  "sharedRequirements": ["requirement1"]
}`, userPrompt)
}

func numberTasks(tasks []string) string {
	if len(tasks) == 0 {
		return "Use your judgement based on the project description."
	}
	var b strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return strings.TrimRight(b.String(), "\n")
}

func frontendPrompt(plan *Plan) string {
	return fmt.Sprintf(`You are a Frontend Developer specializing in React and Next.js.

Project: %s
Description: %s

Your tasks:
%s

Shared Requirements:
%s

IMPORTANT DESIGN RULES:
1. Use ONLY 3-5 colors total (1 primary, 2-3 neutrals, 1-2 accents)
2. Use ONLY 2 font families maximum
3. Apply proper spacing with Tailwind spacing scale
4. Make it responsive (mobile-first)
5. Add smooth transitions and hover effects
6. Use semantic HTML and proper accessibility

Create all necessary React components, pages, and styles.
Use TypeScript, Tailwind CSS, and modern React patterns.

%s`, plan.ProjectName, plan.Description, numberTasks(plan.FrontendTasks),
		strings.Join(plan.SharedRequirements, "\n"), fileFormatRule)
}

func backendPrompt(plan *Plan) string {
	return fmt.Sprintf(`You are a Backend Developer specializing in Next.js API routes.

Project: %s
Description: %s

Your tasks:
%s

Shared Requirements:
%s

Create all necessary API routes, server actions, and data handling logic.

%s`, plan.ProjectName, plan.Description, numberTasks(plan.BackendTasks),
		strings.Join(plan.SharedRequirements, "\n"), fileFormatRule)
}

func integrationPrompt(frontendCode, backendCode string) string {
	return fmt.Sprintf(`You are the System Architect. Integrate the work from both agents.

Frontend Code:
%s

Backend Code:
%s

Create the final integrated code with all necessary files.
%s`, frontendCode, backendCode, fileFormatRule)
}

func agentSystemPrompt(role string) string {
	return fmt.Sprintf(`You are an expert %s.
Always respond with clean, production-ready code.
NEVER use placeholders like "// Add your code here".
NEVER use Chinese characters - only English and Arabic for comments.
Format code properly with clear file paths.`, role)
}
