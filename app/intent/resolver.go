// Package intent turns a raw utterance plus the current task snapshot into
// executed task operations and a reply. It prefers the reasoning model with
// the fixed operation catalog attached and degrades to an ordered set of
// deterministic keyword rules when the model is unavailable.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/JeremyDillmann/task-bot-ai/app/models"
	"github.com/JeremyDillmann/task-bot-ai/app/store"
	"github.com/JeremyDillmann/task-bot-ai/app/tasks"
	"github.com/JeremyDillmann/task-bot-ai/app/tools"
	"github.com/JeremyDillmann/task-bot-ai/app/utils"
)

const storeDownReply = "Entschuldige, ich komme gerade nicht an die Aufgabenliste heran. Bitte prüft die Tabellen-Konfiguration."

// Options toggles the optional plan and refine passes. Either pass failing
// degrades silently to the single-stage result.
type Options struct {
	Plan   bool
	Refine bool
}

// Resolver is stateless between calls: every Resolve works on a fresh
// snapshot and a per-request toolkit bound to the requester.
type Resolver struct {
	engine *tasks.Engine
	model  models.Interface
	opts   Options
}

func NewResolver(engine *tasks.Engine, model models.Interface, opts Options) *Resolver {
	return &Resolver{engine: engine, model: model, opts: opts}
}

// Resolve handles one utterance and returns the reply text. Store failures
// and model failures are both converted to replies here; callers never see
// an error.
func (r *Resolver) Resolve(ctx context.Context, text, requester string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Sag mir einfach, was auf die Liste soll. 😊"
	}

	snapshot, err := r.engine.List(ctx, tasks.Filter{})
	if err != nil {
		return errorReply(err)
	}

	if r.model == nil {
		return r.fallback(ctx, text, requester)
	}

	toolkit := r.buildToolkit(ctx, requester)
	messages := r.buildMessages(ctx, text, requester, snapshot)

	resolution, err := r.model.Resolve(ctx, messages, toolkit.All())
	if err != nil {
		log.Printf("⚠️ Reasoning unavailable, using fallback rules: %v", err)
		return r.fallback(ctx, text, requester)
	}

	var reply string
	switch {
	case resolution.Call != nil:
		reply = r.dispatch(toolkit, resolution.Call)
	case strings.TrimSpace(resolution.Content) != "":
		reply = resolution.Content
	default:
		reply = r.fallback(ctx, text, requester)
	}

	return r.refine(ctx, text, reply)
}

// dispatch validates the selected operation's arguments and executes its
// handler. Unknown operations and broken argument JSON degrade to a
// user-facing message, never a crash.
func (r *Resolver) dispatch(toolkit *tools.Toolkit, call *models.ToolCall) string {
	tool, ok := toolkit.Get(call.Name)
	if !ok || tool.HandlerFunc == nil {
		log.Printf("⚠️ Model selected unknown operation %q", call.Name)
		return "Das habe ich nicht verstanden. 🤔"
	}

	params, err := utils.ParseArguments(call.Arguments)
	if err != nil && strings.TrimSpace(call.Arguments) != "" {
		log.Printf("⚠️ Malformed arguments for %s: %v", call.Name, err)
		return "Das habe ich nicht verstanden. 🤔"
	}

	reply, err := tool.HandlerFunc(tools.ToolTask{Key: call.Name, Parameters: params})
	if err != nil {
		return errorReply(err)
	}
	return reply
}

// buildToolkit binds the operation catalog to the engine for this request.
// Handlers close over the requester so first-person attribution lands on the
// right name.
func (r *Resolver) buildToolkit(ctx context.Context, requester string) *tools.Toolkit {
	toolkit := tools.NewToolkit()
	catalog := tools.Catalog()

	register := func(name string, handler func(tools.ToolTask) (string, error)) {
		tool := catalog[name]
		tool.HandlerFunc = handler
		if err := toolkit.Register(tool); err != nil {
			log.Printf("⚠️ Failed to register operation %s: %v", name, err)
		}
	}

	register(tools.ShowTasks, func(tt tools.ToolTask) (string, error) {
		args, err := utils.CastAny[showArgs](tt.Parameters)
		if err != nil {
			return "", err
		}
		filter := tasks.Filter{
			Person:        strings.TrimSpace(args.Person),
			Location:      strings.TrimSpace(args.Location),
			ExcludeShared: args.ExcludeShared,
		}
		if tasks.IsFirstPerson(filter.Person) {
			filter.Person = requester
		}
		list, err := r.engine.List(ctx, filter)
		if err != nil {
			return "", err
		}
		return tasks.FormatList(list, filter), nil
	})

	register(tools.AddTasks, func(tt tools.ToolTask) (string, error) {
		args, err := utils.CastAny[addArgs](tt.Parameters)
		if err != nil {
			return "", err
		}
		candidates := nonEmpty(args.Tasks)
		if len(candidates) == 0 {
			return "Ich habe keine Aufgabe erkannt, die ich hinzufügen könnte.", nil
		}
		res, err := r.engine.Add(ctx, requester, candidates)
		if err != nil {
			return "", err
		}
		return tasks.FormatAdd(res), nil
	})

	register(tools.CompleteTask, func(tt tools.ToolTask) (string, error) {
		args, err := utils.CastAny[nameArgs](tt.Parameters)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(args.Name) == "" {
			return "Welche Aufgabe soll ich abhaken?", nil
		}
		text, err := r.engine.CompleteOne(ctx, args.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Erledigt: %s", text), nil
	})

	register(tools.CompleteAll, func(tools.ToolTask) (string, error) {
		count, err := r.engine.CompleteAll(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ Alle %d Aufgaben abgehakt. Starke Leistung!", count), nil
	})

	register(tools.DeleteTask, func(tt tools.ToolTask) (string, error) {
		args, err := utils.CastAny[nameArgs](tt.Parameters)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(args.Name) == "" {
			return "Welche Aufgabe soll ich löschen?", nil
		}
		text, err := r.engine.DeleteOne(ctx, args.Name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("🗑 Gelöscht: %s", text), nil
	})

	register(tools.DeleteAll, func(tools.ToolTask) (string, error) {
		count, err := r.engine.DeleteAll(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("🗑 %d Aufgaben gelöscht. Die Liste ist leer.", count), nil
	})

	register(tools.UpdateTask, func(tt tools.ToolTask) (string, error) {
		args, err := utils.CastAny[updateArgs](tt.Parameters)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(args.Name) == "" {
			return "Welche Aufgabe soll ich ändern?", nil
		}
		text, err := r.engine.UpdateOne(ctx, requester, args.Name, args.Candidate())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("✏️ Aktualisiert: %s", text), nil
	})

	register(tools.UndoLast, func(tools.ToolTask) (string, error) {
		outcome, err := r.engine.Undo(ctx)
		if err != nil {
			return "", err
		}
		return tasks.FormatUndo(outcome), nil
	})

	register(tools.SuggestTasks, func(tools.ToolTask) (string, error) {
		return r.suggest(ctx)
	})

	return toolkit
}

// buildMessages assembles the system prompt and the current-state context
// block. The full task lines are included so the model can disambiguate
// fragments; the count alone is not enough for that.
func (r *Resolver) buildMessages(ctx context.Context, text, requester string, snapshot []tasks.Task) []models.Message {
	system := "Du bist der Aufgaben-Assistent eines Haushalts. " +
		"Sprich Deutsch, sei knapp und freundlich. " +
		"Wenn die Nachricht eine Aufgabe betrifft, rufe genau eine der Operationen auf. " +
		"Nutze das Feld 'person' nur, wenn die Nachricht eine Person nennt; " +
		"Wörter wie 'ich' oder 'beide' gibst du unverändert weiter. " +
		"Antworte nur dann mit Text statt einer Operation, wenn die Nachricht keine Aufgabenverwaltung ist."

	var b strings.Builder
	fmt.Fprintf(&b, "Absender: %s\n", requester)
	fmt.Fprintf(&b, "Offene Aufgaben (%d):\n", len(snapshot))
	for _, t := range snapshot {
		fmt.Fprintf(&b, "- %s", t.Text)
		if t.Assignee != "" {
			fmt.Fprintf(&b, " [%s]", t.Assignee)
		}
		if t.When != "" {
			fmt.Fprintf(&b, " (%s)", t.When)
		}
		b.WriteString("\n")
	}

	messages := []models.Message{
		{Role: "system", Content: system},
		{Role: "system", Content: b.String()},
	}

	if hint := r.plan(ctx, text); hint != "" {
		messages = append(messages, models.Message{Role: "system", Content: "Hinweis aus der Voranalyse: " + hint})
	}

	messages = append(messages, models.Message{Role: "user", Content: text})
	return messages
}

// plan is the optional first pass: a structured intent guess consumed only
// as an advisory hint. Any failure skips the hint.
func (r *Resolver) plan(ctx context.Context, text string) string {
	if !r.opts.Plan || r.model == nil {
		return ""
	}
	hint, err := r.model.Think(ctx, []models.Message{
		{Role: "system", Content: "Fasse in einem Satz zusammen, welche Aufgabenoperation die folgende Nachricht vermutlich meint (anzeigen, hinzufügen, abhaken, löschen, ändern, rückgängig, vorschlagen oder Smalltalk)."},
		{Role: "user", Content: text},
	}, models.ThinkTemperature)
	if err != nil {
		log.Printf("⚠️ Plan pass skipped: %v", err)
		return ""
	}
	return strings.TrimSpace(hint)
}

// refine is the optional last pass: it may rewrite the reply text but runs
// strictly after all mutations are committed and never re-executes anything.
func (r *Resolver) refine(ctx context.Context, text, reply string) string {
	if !r.opts.Refine || r.model == nil {
		return reply
	}
	polished, err := r.model.Think(ctx, []models.Message{
		{Role: "system", Content: "Formuliere die folgende Antwort eines Aufgaben-Assistenten natürlicher, ohne Informationen zu ändern, hinzuzufügen oder wegzulassen. Behalte Emojis und Listenstruktur bei."},
		{Role: "user", Content: "Nachricht: " + text + "\nAntwort: " + reply},
	}, models.ThinkTemperature)
	if err != nil || strings.TrimSpace(polished) == "" {
		return reply
	}
	return polished
}

func (r *Resolver) suggest(ctx context.Context) (string, error) {
	list, err := r.engine.List(ctx, tasks.Filter{})
	if err != nil {
		return "", err
	}
	if r.model == nil {
		return "Mir fällt gerade nichts ein — die Liste kennt ihr besser als ich. 😉", nil
	}
	var b strings.Builder
	for _, t := range list {
		fmt.Fprintf(&b, "- %s [%s]\n", t.Text, t.Assignee)
	}
	reply, err := r.model.Think(ctx, []models.Message{
		{Role: "system", Content: "Schlage anhand der offenen Aufgaben zwei oder drei sinnvolle nächste Schritte für den Haushalt vor. Kurz und konkret, keine neuen Aufgaben anlegen."},
		{Role: "user", Content: b.String()},
	}, models.ThinkTemperature)
	if err != nil {
		return "Mir fällt gerade nichts ein — die Liste kennt ihr besser als ich. 😉", nil
	}
	return reply, nil
}

// errorReply maps engine and store failures to user-facing text at the
// request boundary.
func errorReply(err error) string {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return storeDownReply
	case errors.Is(err, tasks.ErrNotFound):
		return tasks.FormatNotFound(strings.TrimPrefix(err.Error(), tasks.ErrNotFound.Error()+": "))
	default:
		log.Printf("❌ Unexpected error resolving intent: %v", err)
		return "Da ist etwas schiefgelaufen. Versuch es bitte noch einmal."
	}
}

type showArgs struct {
	Person        string `json:"person"`
	Location      string `json:"location"`
	ExcludeShared bool   `json:"exclude_shared"`
}

type addArgs struct {
	Tasks []tasks.Candidate `json:"tasks"`
}

type nameArgs struct {
	Name string `json:"name"`
}

type updateArgs struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Person   string `json:"person"`
	Location string `json:"location"`
	When     string `json:"when"`
	Category string `json:"category"`
}

func (u updateArgs) Candidate() tasks.Candidate {
	return tasks.Candidate{
		Text:     u.Text,
		Person:   u.Person,
		Location: u.Location,
		When:     u.When,
		Category: u.Category,
	}
}

func nonEmpty(cs []tasks.Candidate) []tasks.Candidate {
	out := cs[:0]
	for _, c := range cs {
		if strings.TrimSpace(c.Text) != "" {
			out = append(out, c)
		}
	}
	return out
}
