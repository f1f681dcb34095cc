package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KYEONGBINKEUM/todo-sub001/config"
	"github.com/KYEONGBINKEUM/todo-sub001/models"
)

// ErrUnsupportedAction is returned for action kinds outside the closed
// enumeration. The orchestrator surfaces it as invalid-argument.
var ErrUnsupportedAction = errors.New("unsupported action")

// PromptPair is the output of a prompt builder: the system instruction
// and the user content sent to the model. Never persisted.
type PromptPair struct {
	System string
	User   string
}

// PromptRegistry maps an action to its prompt builder. Builders are
// pure: they perform no I/O, and everything they need (already-fetched
// transcript, task lists, note content) must be present in the typed
// action context.
type PromptRegistry interface {
	Build(action models.ActionKind, actionCtx ActionContext, language string) (PromptPair, error)
}

type promptBuilderFunc func(actionCtx ActionContext, langInstruction string) (PromptPair, error)

type promptRegistry struct {
	builders map[models.ActionKind]promptBuilderFunc
}

// NewPromptRegistry creates the registry with one builder per known
// action.
func NewPromptRegistry() PromptRegistry {
	return &promptRegistry{
		builders: map[models.ActionKind]promptBuilderFunc{
			models.ActionSuggestTasks:     buildSuggestTasks,
			models.ActionPrioritize:       buildPrioritize,
			models.ActionSchedule:         buildSchedule,
			models.ActionBreakdown:        buildBreakdown,
			models.ActionAutoWriteNote:    buildAutoWriteNote,
			models.ActionCompleteNote:     buildCompleteNote,
			models.ActionYouTubeToNote:    buildYouTubeToNote,
			models.ActionYouTubeToMindmap: buildYouTubeToMindmap,
			models.ActionGenerateMindmap:  buildGenerateMindmap,
		},
	}
}

// Build dispatches to the action's builder. Unknown actions fail with
// ErrUnsupportedAction instead of falling through to a default.
func (r *promptRegistry) Build(action models.ActionKind, actionCtx ActionContext, language string) (PromptPair, error) {
	builder, ok := r.builders[action]
	if !ok {
		return PromptPair{}, fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}
	return builder(actionCtx, languageInstruction(language))
}

// languageInstructions maps supported response-language codes to the
// instruction appended to every system prompt. Codes outside the table
// fall back to the configured default rather than failing.
var languageInstructions = map[string]string{
	"ko": "Respond in Korean.",
	"en": "Respond in English.",
	"ja": "Respond in Japanese.",
	"es": "Respond in Spanish.",
	"pt": "Respond in Portuguese.",
	"fr": "Respond in French.",
}

func languageInstruction(code string) string {
	if instr, ok := languageInstructions[code]; ok {
		return instr
	}
	fallback := config.AppConfig.AI.DefaultLanguage
	if instr, ok := languageInstructions[fallback]; ok {
		return instr
	}
	return languageInstructions["ko"]
}

const jsonOnlyRule = "Respond with a single JSON object only, no markdown fences and no commentary."

func buildSuggestTasks(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*TaskListContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("suggest_tasks: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are a productivity assistant that suggests new tasks for a to-do list.",
		"Output schema: {\"tasks\": [{\"title\": string, \"description\": string, \"priority\": \"low\" | \"medium\" | \"high\"}]}.",
		"Suggest 3 to 5 tasks. Do not repeat tasks the user already has.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	var user strings.Builder
	if c.Goal != "" {
		fmt.Fprintf(&user, "My current goal: %s\n", c.Goal)
	}
	if len(c.Tasks) > 0 {
		user.WriteString("My existing tasks:\n")
		writeTaskList(&user, c.Tasks)
	} else {
		user.WriteString("I have no tasks yet. Suggest a starting set.")
	}
	return PromptPair{System: system, User: user.String()}, nil
}

func buildPrioritize(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*TaskListContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("prioritize: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are a productivity assistant that orders a task list by importance and urgency.",
		"Output schema: {\"tasks\": [{\"title\": string, \"priority\": \"low\" | \"medium\" | \"high\", \"reason\": string}]}.",
		"Include every given task exactly once, most important first.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	var user strings.Builder
	if c.Goal != "" {
		fmt.Fprintf(&user, "My current goal: %s\n", c.Goal)
	}
	user.WriteString("Prioritize these tasks:\n")
	writeTaskList(&user, c.Tasks)
	return PromptPair{System: system, User: user.String()}, nil
}

func buildSchedule(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*TaskListContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("schedule: unexpected context type %T", actionCtx)
	}

	// The only non-deterministic input of any builder: scheduling is
	// anchored to today's date so relative suggestions land correctly.
	today := time.Now().UTC().Format("2006-01-02")

	system := strings.Join([]string{
		"You are a productivity assistant that assigns dates to tasks.",
		fmt.Sprintf("Today's date is %s.", today),
		"Output schema: {\"schedule\": [{\"title\": string, \"date\": \"YYYY-MM-DD\", \"time\": \"HH:MM\" | null, \"reason\": string}]}.",
		"Never schedule anything before today.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	var user strings.Builder
	if c.Goal != "" {
		fmt.Fprintf(&user, "My current goal: %s\n", c.Goal)
	}
	user.WriteString("Schedule these tasks:\n")
	writeTaskList(&user, c.Tasks)
	return PromptPair{System: system, User: user.String()}, nil
}

func buildBreakdown(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*TaskContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("breakdown: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are a productivity assistant that breaks a task into concrete subtasks.",
		"Output schema: {\"subtasks\": [{\"title\": string, \"description\": string}]}.",
		"Produce 3 to 7 subtasks, each small enough to finish in one sitting, in execution order.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	user := fmt.Sprintf("Break down this task: %s", c.Title)
	if c.Detail != "" {
		user += fmt.Sprintf("\nAdditional detail: %s", c.Detail)
	}
	return PromptPair{System: system, User: user}, nil
}

func buildAutoWriteNote(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*NoteContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("auto_write_note: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are a writing assistant that drafts a complete note from a title.",
		"Output schema: {\"title\": string, \"content\": string}. The content field is markdown.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	user := fmt.Sprintf("Write a note titled: %s", c.Title)
	if c.Content != "" {
		user += fmt.Sprintf("\nI already have these fragments, incorporate them:\n%s", c.Content)
	}
	return PromptPair{System: system, User: user}, nil
}

func buildCompleteNote(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*NoteContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("complete_note: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are a writing assistant that continues an unfinished note.",
		"Output schema: {\"content\": string}. The content field is markdown containing only the continuation, not the existing text.",
		"Match the tone and structure of the existing text.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	var user strings.Builder
	if c.Title != "" {
		fmt.Fprintf(&user, "Note title: %s\n", c.Title)
	}
	fmt.Fprintf(&user, "Existing note text:\n%s\n\nContinue this note.", c.Content)
	return PromptPair{System: system, User: user.String()}, nil
}

const mindmapSchema = "Output schema: {\"root\": {\"label\": string, \"children\": [node]}} where node is {\"label\": string, \"children\": [node]}. Maximum depth 4."

func buildYouTubeToNote(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*VideoContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("youtube_to_note: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are an assistant that turns a video into a well-structured note.",
		"Output schema: {\"title\": string, \"summary\": string, \"content\": string}. The content field is markdown with headed sections.",
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	user, err := videoUserPrompt(c, "Create a note from this video.")
	if err != nil {
		return PromptPair{}, err
	}
	return PromptPair{System: system, User: user}, nil
}

func buildYouTubeToMindmap(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*VideoContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("youtube_to_mindmap: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are an assistant that turns a video into a mind map.",
		mindmapSchema,
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	user, err := videoUserPrompt(c, "Create a mind map from this video.")
	if err != nil {
		return PromptPair{}, err
	}
	return PromptPair{System: system, User: user}, nil
}

func buildGenerateMindmap(actionCtx ActionContext, langInstruction string) (PromptPair, error) {
	c, ok := actionCtx.(*NoteContext)
	if !ok {
		return PromptPair{}, fmt.Errorf("generate_mindmap: unexpected context type %T", actionCtx)
	}

	system := strings.Join([]string{
		"You are an assistant that turns a note into a mind map.",
		mindmapSchema,
		jsonOnlyRule,
		langInstruction,
	}, "\n")

	var user strings.Builder
	if c.Title != "" {
		fmt.Fprintf(&user, "Note title: %s\n", c.Title)
	}
	fmt.Fprintf(&user, "Note content:\n%s\n\nCreate a mind map of this note.", c.Content)
	return PromptPair{System: system, User: user.String()}, nil
}

// videoUserPrompt renders the user content for the two video actions.
// With a transcript it uses the full variant; without one it falls
// back to metadata only. Neither transcript nor metadata available is
// a builder error (the orchestrator reports it as a precondition
// failure before ever invoking the model).
func videoUserPrompt(c *VideoContext, instruction string) (string, error) {
	var user strings.Builder
	if c.Title != "" {
		fmt.Fprintf(&user, "Video title: %s\n", c.Title)
	}
	if c.Author != "" {
		fmt.Fprintf(&user, "Channel: %s\n", c.Author)
	}
	if c.Description != "" {
		fmt.Fprintf(&user, "Description: %s\n", c.Description)
	}

	switch {
	case c.Transcript != "":
		fmt.Fprintf(&user, "Transcript:\n%s\n", c.Transcript)
	case c.HasMetadata():
		user.WriteString("No transcript is available; work from the metadata above.\n")
	default:
		return "", errors.New("video actions require a transcript or video metadata")
	}

	user.WriteString(instruction)
	return user.String(), nil
}

func writeTaskList(sb *strings.Builder, tasks []string) {
	for i, task := range tasks {
		fmt.Fprintf(sb, "%d. %s\n", i+1, task)
	}
}
