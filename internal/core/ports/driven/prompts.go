package driven

// PromptStore provides the LLM prompt templates.
type PromptStore interface {
	// Load returns the template for name. An error means the caller should
	// use the built-in default.
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()
}

// Prompt names.
const (
	PromptClassify = "classify"
	PromptNarrate  = "narrate"
)

// Placeholders substituted into prompt templates.
const (
	PlaceholderCategories = "{{categories}}"
	PlaceholderComplaint  = "{{complaint}}"
	PlaceholderFigures    = "{{figures}}"
)

// PromptPlaceholders lists the placeholders each template must contain.
var PromptPlaceholders = map[string][]string{
	PromptClassify: {PlaceholderCategories, PlaceholderComplaint},
	PromptNarrate:  {PlaceholderFigures},
}

// DefaultClassifyPrompt is the built-in PromptClassify template.
const DefaultClassifyPrompt = `You classify anonymous workplace complaints.
Reply with a single JSON object and nothing else, using exactly these fields:
{"category": one of [{{categories}}],
 "urgency": one of ["Low", "Medium", "High", "Critical"],
 "sentiment": one of ["Negative", "Neutral", "Positive"],
 "sentiment_score": number between -1 and 1,
 "spam_score": number between 0 and 1,
 "confidence": number between 0 and 1}

Complaint:
{{complaint}}`

// DefaultNarratePrompt is the built-in PromptNarrate template.
const DefaultNarratePrompt = `You write executive summaries for an anonymous workplace complaint channel.
Using only the figures below, write three to five sentences for leadership:
the overall volume and trend, the dominant categories, the critical cases,
and one recommended focus area. Do not invent numbers.

{{figures}}`

// DefaultPrompts maps prompt names to their built-in templates.
var DefaultPrompts = map[string]string{
	PromptClassify: DefaultClassifyPrompt,
	PromptNarrate:  DefaultNarratePrompt,
}

// PromptStoreAware is implemented by services that accept custom prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
