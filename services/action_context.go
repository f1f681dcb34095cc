package services

import (
	"fmt"

	"github.com/KYEONGBINKEUM/todo-sub001/models"
)

// ActionContext is the typed context a prompt builder consumes. The
// wire format is a free-form key/value bag; ContextForAction narrows
// it into the variant for the requested action so each builder's
// required fields are checked once, up front, instead of being
// duck-typed at build time.
type ActionContext interface {
	actionContext()
}

// TaskListContext backs suggest_tasks, prioritize and schedule: a set
// of existing tasks plus an optional free-form goal.
type TaskListContext struct {
	Tasks []string
	Goal  string
}

// TaskContext backs breakdown: a single task to decompose.
type TaskContext struct {
	Title  string
	Detail string
}

// NoteContext backs auto_write_note, complete_note and
// generate_mindmap: a note title and whatever content already exists.
type NoteContext struct {
	Title   string
	Content string
}

// VideoContext backs youtube_to_note and youtube_to_mindmap. The
// orchestrator fills Transcript during enrichment; the metadata fields
// come from the client and carry the fallback prompt when no
// transcript could be fetched.
type VideoContext struct {
	SourceURL   string
	Title       string
	Author      string
	Description string
	Transcript  string
}

// HasMetadata reports whether enough metadata exists to build the
// metadata-only prompt variant when the transcript is unavailable.
func (v *VideoContext) HasMetadata() bool {
	return v.Title != "" || v.Author != "" || v.Description != ""
}

func (*TaskListContext) actionContext() {}
func (*TaskContext) actionContext()     {}
func (*NoteContext) actionContext()     {}
func (*VideoContext) actionContext()    {}

// ContextForAction narrows the wire-level context bag into the typed
// variant for the action. Missing required fields fail here, before
// any external call is made.
func ContextForAction(action models.ActionKind, bag map[string]interface{}) (ActionContext, error) {
	switch action {
	case models.ActionSuggestTasks:
		return &TaskListContext{
			Tasks: stringSlice(bag, "tasks"),
			Goal:  stringVal(bag, "goal"),
		}, nil

	case models.ActionPrioritize, models.ActionSchedule:
		tasks := stringSlice(bag, "tasks")
		if len(tasks) == 0 {
			return nil, fmt.Errorf("action %s requires a non-empty 'tasks' list", action)
		}
		return &TaskListContext{Tasks: tasks, Goal: stringVal(bag, "goal")}, nil

	case models.ActionBreakdown:
		title := stringVal(bag, "task")
		if title == "" {
			return nil, fmt.Errorf("action %s requires a 'task' field", action)
		}
		return &TaskContext{Title: title, Detail: stringVal(bag, "detail")}, nil

	case models.ActionAutoWriteNote:
		title := stringVal(bag, "title")
		if title == "" {
			return nil, fmt.Errorf("action %s requires a 'title' field", action)
		}
		return &NoteContext{Title: title, Content: stringVal(bag, "content")}, nil

	case models.ActionCompleteNote, models.ActionGenerateMindmap:
		content := stringVal(bag, "content")
		if content == "" {
			return nil, fmt.Errorf("action %s requires a 'content' field", action)
		}
		return &NoteContext{Title: stringVal(bag, "title"), Content: content}, nil

	case models.ActionYouTubeToNote, models.ActionYouTubeToMindmap:
		return &VideoContext{
			SourceURL:   stringVal(bag, "url"),
			Title:       stringVal(bag, "title"),
			Author:      stringVal(bag, "author"),
			Description: stringVal(bag, "description"),
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}
}

func stringVal(bag map[string]interface{}, key string) string {
	if bag == nil {
		return ""
	}
	if s, ok := bag[key].(string); ok {
		return s
	}
	return ""
}

func stringSlice(bag map[string]interface{}, key string) []string {
	if bag == nil {
		return nil
	}
	var out []string
	switch v := bag[key].(type) {
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
