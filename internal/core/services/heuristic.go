package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
	"github.com/custodia-labs/whistle-cli/internal/logger"
)

// Ensure HeuristicAnalyzer implements the interface.
var _ driven.TextAnalyzer = (*HeuristicAnalyzer)(nil)

const (
	// noMatchConfidence is reported when no category evidence is found.
	noMatchConfidence = 0.3

	minConfidence = 0.1
	maxConfidence = 0.95

	// repetitionSaturation is the share of repeated characters treated as fully spammy.
	repetitionSaturation = 0.3

	// lowVarietyRatio is the unique-word share below which text looks generated.
	lowVarietyRatio    = 0.3
	lowVarietyMinWords = 5
)

var (
	urlPattern         = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	punctuationPattern = regexp.MustCompile(`[!?]{3,}`)
	wordPattern        = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// TextLimits bounds accepted complaint text.
type TextLimits struct {
	// MinLength is the length below which the spam heuristic penalises text.
	MinLength int

	// MaxLength is the longest accepted text, in characters.
	MaxLength int
}

// DefaultTextLimits returns the default text bounds.
func DefaultTextLimits() TextLimits {
	return TextLimits{MinLength: domain.DefaultMinTextLength, MaxLength: domain.DefaultMaxTextLength}
}

// validate trims text and rejects empty or over-long input.
func (l TextLimits) validate(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: complaint text is empty", domain.ErrInvalidInput)
	}
	if l.MaxLength > 0 && utf8.RuneCountInString(text) > l.MaxLength {
		return "", fmt.Errorf("%w: complaint text exceeds %d characters", domain.ErrInvalidInput, l.MaxLength)
	}
	return text, nil
}

type matcher struct {
	term   string
	weight float64
	re     *regexp.Regexp
}

type categoryMatchers struct {
	category domain.Category
	matchers []matcher
}

// compiledRules is an immutable, ready-to-match form of domain.Rules.
type compiledRules struct {
	rules      domain.Rules
	categories []categoryMatchers
	urgency    []matcher
	positive   []*regexp.Regexp
	negative   []*regexp.Regexp
	phrases    []*regexp.Regexp
}

func termPattern(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.ToLower(term)))
}

func compileTerms(terms []domain.WeightedTerm) ([]matcher, error) {
	out := make([]matcher, 0, len(terms))
	for _, t := range terms {
		re, err := termPattern(t.Term)
		if err != nil {
			return nil, fmt.Errorf("compile term %q: %w", t.Term, err)
		}
		out = append(out, matcher{term: t.Term, weight: t.Weight, re: re})
	}
	return out, nil
}

func compileWords(words []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		re, err := termPattern(w)
		if err != nil {
			return nil, fmt.Errorf("compile term %q: %w", w, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func compileRules(rules *domain.Rules) (*compiledRules, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	c := &compiledRules{rules: *rules}
	for _, cr := range rules.Categories {
		ms, err := compileTerms(cr.Terms)
		if err != nil {
			return nil, err
		}
		for _, p := range cr.Patterns {
			re, err := regexp.Compile(`(?i)` + p.Term)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q: %w", p.Term, err)
			}
			ms = append(ms, matcher{term: p.Term, weight: p.Weight, re: re})
		}
		c.categories = append(c.categories, categoryMatchers{category: cr.Category, matchers: ms})
	}

	var err error
	if c.urgency, err = compileTerms(rules.UrgencyMarkers); err != nil {
		return nil, err
	}
	if c.positive, err = compileWords(rules.PositiveTerms); err != nil {
		return nil, err
	}
	if c.negative, err = compileWords(rules.NegativeTerms); err != nil {
		return nil, err
	}
	if c.phrases, err = compileWords(rules.SpamPhrases); err != nil {
		return nil, err
	}
	return c, nil
}

// HeuristicAnalyzer classifies text with weighted keyword and pattern tables.
// It is deterministic: the same text and rules always produce the same analysis.
type HeuristicAnalyzer struct {
	mu     sync.RWMutex
	rules  *compiledRules
	limits TextLimits
}

// NewHeuristicAnalyzer creates a heuristic analyzer.
// If rules is nil the built-in defaults are used.
func NewHeuristicAnalyzer(rules *domain.Rules, limits TextLimits) (*HeuristicAnalyzer, error) {
	if rules == nil {
		defaults := domain.DefaultRules()
		rules = &defaults
	}
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return &HeuristicAnalyzer{rules: compiled, limits: limits}, nil
}

// SetRules swaps the active rules. Invalid rules are rejected and the
// previous rules stay active.
func (h *HeuristicAnalyzer) SetRules(rules *domain.Rules) error {
	compiled, err := compileRules(rules)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	h.mu.Lock()
	h.rules = compiled
	h.mu.Unlock()
	logger.Info("Heuristic rules reloaded (%d categories)", len(compiled.categories))
	return nil
}

// Limits returns the text bounds enforced by the analyzer.
func (h *HeuristicAnalyzer) Limits() TextLimits {
	return h.limits
}

func (h *HeuristicAnalyzer) current() *compiledRules {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules
}

// Analyze classifies text using only local rules.
func (h *HeuristicAnalyzer) Analyze(_ context.Context, text string) (*domain.Analysis, error) {
	text, err := h.limits.validate(text)
	if err != nil {
		return nil, err
	}

	rules := h.current()
	words := wordPattern.FindAllString(text, -1)

	scores, matches := rules.categoryScores(text)
	category, confidence := rules.pickCategory(scores)
	sentiment := rules.sentiment(text, len(words))
	urgencyScore := rules.urgencyScore(text, sentiment)

	a := &domain.Analysis{
		Category:     category,
		Urgency:      rules.rules.Urgency.Level(urgencyScore),
		UrgencyScore: round3(urgencyScore),
		SpamScore:    rules.spamScore(text, words, len(matches) > 0, h.limits.MinLength),
		Sentiment:    sentiment,
		Confidence:   confidence,
		Method:       domain.MethodHeuristic,
		Matches:      matches,
		Scores:       scores,
	}
	logger.Debug("Heuristic: category=%s confidence=%.2f urgency=%s(%.2f) spam=%.2f matches=%v",
		a.Category, a.Confidence, a.Urgency, urgencyScore, a.SpamScore, matches)
	return a, nil
}

// SpamScore computes only the spam likelihood of text.
func (h *HeuristicAnalyzer) SpamScore(text string) float64 {
	rules := h.current()
	text = strings.TrimSpace(text)
	scores, _ := rules.categoryScores(text)
	return rules.spamScore(text, wordPattern.FindAllString(text, -1), len(scores) > 0, h.limits.MinLength)
}

func (c *compiledRules) categoryScores(text string) (map[domain.Category]float64, []string) {
	scores := make(map[domain.Category]float64)
	var matches []string
	for _, cm := range c.categories {
		var total float64
		for _, m := range cm.matchers {
			if m.re.MatchString(text) {
				total += m.weight
				matches = append(matches, m.term)
			}
		}
		if total > 0 {
			scores[cm.category] += total
		}
	}
	return scores, matches
}

// pickCategory returns the highest scoring category, ties broken by priority.
func (c *compiledRules) pickCategory(scores map[domain.Category]float64) (domain.Category, float64) {
	best := domain.CategoryOther
	var top, sum float64
	for _, cat := range domain.AllCategories() {
		s := scores[cat]
		sum += s
		if s > top {
			best, top = cat, s
		}
	}
	if top == 0 {
		return domain.CategoryOther, noMatchConfidence
	}

	share := top / sum
	strength := math.Min(1, top/c.rules.ConfidenceSaturation)
	confidence := domain.Clamp(0.4*share+0.5*strength+0.05, minConfidence, maxConfidence)
	return best, round3(confidence)
}

func countMatches(res []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range res {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

func (c *compiledRules) sentiment(text string, wordCount int) domain.Sentiment {
	if wordCount == 0 {
		return domain.Sentiment{Label: domain.SentimentNeutral}
	}
	pos := countMatches(c.positive, text)
	neg := countMatches(c.negative, text)
	score := domain.Clamp(float64(pos-neg)*c.rules.SentimentScale/float64(wordCount), -1, 1)

	label := domain.SentimentNeutral
	switch {
	case score <= -0.1:
		label = domain.SentimentNegative
	case score >= 0.1:
		label = domain.SentimentPositive
	}
	return domain.Sentiment{Label: label, Magnitude: round3(math.Abs(score))}
}

func (c *compiledRules) urgencyScore(text string, s domain.Sentiment) float64 {
	var total float64
	for _, m := range c.urgency {
		if m.re.MatchString(text) {
			total += m.weight
		}
	}
	if s.Label == domain.SentimentNegative {
		total += s.Magnitude
	}
	return total
}

func (c *compiledRules) spamScore(text string, words []string, matched bool, minLength int) float64 {
	w := c.rules.Spam
	var score float64

	if utf8.RuneCountInString(text) < minLength {
		score += w.TooShort
	}
	if ratio := repetitionRatio(text); ratio > 0 {
		score += w.Repetition * math.Min(1, ratio/repetitionSaturation)
	}
	if !matched {
		score += w.NoKeyword
	}
	if urlPattern.MatchString(text) {
		score += w.URL
	}
	for _, re := range c.phrases {
		if re.MatchString(text) {
			score += w.Phrase
		}
	}
	if punctuationPattern.MatchString(text) {
		score += w.Punctuation
	}
	if len(words) >= lowVarietyMinWords && uniqueRatio(words) < lowVarietyRatio {
		score += w.LowVariety
	}
	return round3(domain.Clamp01(score))
}

// repetitionRatio is the share of non-space characters that sit in runs of
// three or more identical characters.
func repetitionRatio(text string) float64 {
	var total, repeated, run int
	var prev rune
	flush := func() {
		if run >= 3 {
			repeated += run
		}
	}
	for _, r := range text {
		if unicode.IsSpace(r) {
			flush()
			run, prev = 0, 0
			continue
		}
		total++
		if r == prev {
			run++
			continue
		}
		flush()
		prev, run = r, 1
	}
	flush()
	if total == 0 {
		return 0
	}
	return float64(repeated) / float64(total)
}

func uniqueRatio(words []string) float64 {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
