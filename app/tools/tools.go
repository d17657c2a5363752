package tools

// Operation names of the fixed catalog offered to the reasoning model.
const (
	ShowTasks    = "show_tasks"
	AddTasks     = "add_tasks"
	CompleteTask = "complete_task"
	CompleteAll  = "complete_all_tasks"
	DeleteTask   = "delete_task"
	DeleteAll    = "delete_all_tasks"
	UpdateTask   = "update_task"
	UndoLast     = "undo_last"
	SuggestTasks = "suggest_tasks"
)

type Tool struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Parameters  Parameter                      `json:"parameters"`
	HandlerFunc func(ToolTask) (string, error) `json:"-"`
}

type Parameter struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

type ToolTask struct {
	Key        string         `json:"key"`
	Parameters map[string]any `json:"parameters"`
}

var taskFields = map[string]any{
	"text": map[string]any{
		"type":        "string",
		"description": "What needs to be done, in the user's words.",
	},
	"person": map[string]any{
		"type":        "string",
		"description": "Who the task is for: a name, a first-person word like 'ich', or a shared word like 'beide'. Leave empty when the user did not say.",
	},
	"location": map[string]any{
		"type":        "string",
		"description": "Where the task happens, e.g. a shop name.",
	},
	"when": map[string]any{
		"type":        "string",
		"description": "When it is due: a date, 'morgen', a weekday name, or free text.",
	},
	"category": map[string]any{
		"type":        "string",
		"enum":        []string{"einkaufen", "haushalt", "persönlich", "arbeit", "allgemein"},
		"description": "Task category. Leave empty when unsure.",
	},
}

// Catalog returns the operation definitions without handlers; the intent
// resolver attaches handlers bound to its engine.
func Catalog() map[string]Tool {
	return map[string]Tool{
		ShowTasks: {
			Name:        ShowTasks,
			Description: "Show the current task list, optionally filtered by person and/or location.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"person": map[string]any{
						"type":        "string",
						"description": "Only tasks for this person (shared tasks included unless exclude_shared is set). Use 'Beide' for shared tasks only.",
					},
					"location": map[string]any{
						"type":        "string",
						"description": "Only tasks whose location contains this text.",
					},
					"exclude_shared": map[string]any{
						"type":        "boolean",
						"description": "When filtering by person, leave out shared tasks.",
					},
				},
			},
		},
		AddTasks: {
			Name:        AddTasks,
			Description: "Add one or more new tasks to the list.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"tasks": map[string]any{
						"type":        "array",
						"description": "The tasks to add.",
						"items": map[string]any{
							"type":       "object",
							"properties": taskFields,
							"required":   []string{"text"},
						},
					},
				},
				Required: []string{"tasks"},
			},
		},
		CompleteTask: {
			Name:        CompleteTask,
			Description: "Mark one task as done, found by a fragment of its text.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Part of the task text, enough to identify it.",
					},
				},
				Required: []string{"name"},
			},
		},
		CompleteAll: {
			Name:        CompleteAll,
			Description: "Mark every open task as done. Irreversible.",
			Parameters:  Parameter{Type: "object", Properties: map[string]any{}},
		},
		DeleteTask: {
			Name:        DeleteTask,
			Description: "Remove one task from the list, found by a fragment of its text.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Part of the task text, enough to identify it.",
					},
				},
				Required: []string{"name"},
			},
		},
		DeleteAll: {
			Name:        DeleteAll,
			Description: "Remove every open task from the list. Irreversible.",
			Parameters:  Parameter{Type: "object", Properties: map[string]any{}},
		},
		UpdateTask: {
			Name:        UpdateTask,
			Description: "Change fields of an existing task, found by a fragment of its text. Only the provided fields change.",
			Parameters: Parameter{
				Type: "object",
				Properties: mergeProperties(map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Part of the current task text, enough to identify it.",
					},
				}, taskFields),
				Required: []string{"name"},
			},
		},
		UndoLast: {
			Name:        UndoLast,
			Description: "Undo the most recent change. Only a recent add can be reverted.",
			Parameters:  Parameter{Type: "object", Properties: map[string]any{}},
		},
		SuggestTasks: {
			Name:        SuggestTasks,
			Description: "Suggest what to do next based on the current list.",
			Parameters:  Parameter{Type: "object", Properties: map[string]any{}},
		},
	}
}

func mergeProperties(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
