// Package driven holds the ports the core calls out through: persistence,
// analysis, rendering, operator credentials and the language model.
//
// Always wired:
//
//   - TextAnalyzer: classifies complaint text
//   - ComplaintStore: complaints and their status history
//   - ConfigStore, RuleStore: settings and the heuristic's keyword tables
//   - Renderer, RendererRegistry, Decoder: export formats and backup restore
//   - PasswordHasher, TokenIssuer, SessionStore: operator login
//
// May be nil:
//
//   - LLMService: without it analysis stays local and summaries get the
//     built-in narrative
//   - LLMChecker: settings check reports nothing to verify
//   - PromptStore: built-in prompts are used
//
// Nothing here imports an adapter; the domain package is the only dependency.
package driven
