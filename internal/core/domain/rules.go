package domain

import (
	"fmt"
	"regexp"
)

// WeightedTerm is a keyword or pattern with the weight it contributes when matched.
// Terms match case-insensitively at the start of a word, so "harass" also
// matches "harassed" and "harassment".
type WeightedTerm struct {
	Term   string  `toml:"term" json:"term"`
	Weight float64 `toml:"weight" json:"weight"`
}

// CategoryRule lists the evidence for one category.
type CategoryRule struct {
	Category Category       `toml:"category" json:"category"`
	Terms    []WeightedTerm `toml:"terms" json:"terms"`

	// Patterns are regular expressions, matched case-insensitively.
	Patterns []WeightedTerm `toml:"patterns,omitempty" json:"patterns,omitempty"`
}

// SpamWeights are the contributions of each spam signal.
type SpamWeights struct {
	TooShort    float64 `toml:"too_short" json:"too_short"`
	Repetition  float64 `toml:"repetition" json:"repetition"`
	NoKeyword   float64 `toml:"no_keyword" json:"no_keyword"`
	URL         float64 `toml:"url" json:"url"`
	Phrase      float64 `toml:"phrase" json:"phrase"`
	Punctuation float64 `toml:"punctuation" json:"punctuation"`
	LowVariety  float64 `toml:"low_variety" json:"low_variety"`
}

// UrgencyThresholds map an intensity total to an urgency level.
type UrgencyThresholds struct {
	Critical float64 `toml:"critical" json:"critical"`
	High     float64 `toml:"high" json:"high"`
	Medium   float64 `toml:"medium" json:"medium"`
}

// Level returns the urgency for the given intensity total.
func (t UrgencyThresholds) Level(score float64) Urgency {
	switch {
	case score >= t.Critical:
		return UrgencyCritical
	case score >= t.High:
		return UrgencyHigh
	case score >= t.Medium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Rules are the keyword tables and weights of the heuristic analyzer.
// They are data: operators can edit them without touching code.
type Rules struct {
	Categories []CategoryRule `toml:"categories" json:"categories"`

	// UrgencyMarkers are intensity cues such as threats or frequency words.
	UrgencyMarkers []WeightedTerm     `toml:"urgency_markers" json:"urgency_markers"`
	Urgency        UrgencyThresholds `toml:"urgency" json:"urgency"`

	PositiveTerms  []string `toml:"positive_terms" json:"positive_terms"`
	NegativeTerms  []string `toml:"negative_terms" json:"negative_terms"`
	SentimentScale float64  `toml:"sentiment_scale" json:"sentiment_scale"`

	SpamPhrases []string    `toml:"spam_phrases" json:"spam_phrases"`
	Spam        SpamWeights `toml:"spam" json:"spam"`

	// ConfidenceSaturation is the category score at which evidence counts as strong.
	ConfidenceSaturation float64 `toml:"confidence_saturation" json:"confidence_saturation"`
}

// Validate checks that the rules can drive the analyzer.
func (r *Rules) Validate() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("%w: rules define no categories", ErrInvalidInput)
	}
	for _, cr := range r.Categories {
		if !cr.Category.IsValid() {
			return fmt.Errorf("%w: unknown category %q in rules", ErrInvalidInput, cr.Category)
		}
		for _, t := range cr.Terms {
			if t.Term == "" || t.Weight <= 0 {
				return fmt.Errorf("%w: invalid term %q for %s", ErrInvalidInput, t.Term, cr.Category)
			}
		}
		for _, p := range cr.Patterns {
			if _, err := regexp.Compile(p.Term); err != nil {
				return fmt.Errorf("%w: pattern %q for %s: %v", ErrInvalidInput, p.Term, cr.Category, err)
			}
			if p.Weight <= 0 {
				return fmt.Errorf("%w: pattern %q for %s has no weight", ErrInvalidInput, p.Term, cr.Category)
			}
		}
	}
	u := r.Urgency
	if u.Medium <= 0 || u.High < u.Medium || u.Critical < u.High {
		return fmt.Errorf("%w: urgency thresholds must be positive and ascending", ErrInvalidInput)
	}
	if r.SentimentScale <= 0 {
		return fmt.Errorf("%w: sentiment scale must be positive", ErrInvalidInput)
	}
	if r.ConfidenceSaturation <= 0 {
		return fmt.Errorf("%w: confidence saturation must be positive", ErrInvalidInput)
	}
	return nil
}

func terms(weight float64, words ...string) []WeightedTerm {
	out := make([]WeightedTerm, len(words))
	for i, w := range words {
		out[i] = WeightedTerm{Term: w, Weight: weight}
	}
	return out
}

func join(groups ...[]WeightedTerm) []WeightedTerm {
	var out []WeightedTerm
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		Categories: []CategoryRule{
			{
				Category: CategoryHarassment,
				Terms: join(
					terms(2, "harass", "bully", "bullied", "stalk", "sexual advance", "inappropriate touch"),
					terms(1.5, "scream", "yell", "insult", "humiliat", "intimidat", "threaten", "abus", "belittl"),
					terms(1, "shout", "mock", "hostile", "offensive", "degrad"),
				),
				Patterns: []WeightedTerm{
					{Term: `\b(hit|pushed|grabbed|touched) me\b`, Weight: 2},
				},
			},
			{
				Category: CategoryDiscrimination,
				Terms: join(
					terms(2.5, "discriminat"),
					terms(2, "racis", "sexis", "ageis", "homophob", "xenophob"),
					terms(1.5, "disabilit", "ethnic", "pregnan", "treated differently", "skin colo", "passed over"),
					terms(1, "gender", "religio", "bias", "unequal", "minorit"),
				),
				Patterns: []WeightedTerm{
					{Term: `\bbecause (i am|i'm) (a )?(woman|black|gay|muslim|jewish|old|disabled)\b`, Weight: 2},
				},
			},
			{
				Category: CategoryFraud,
				Terms: join(
					terms(2.5, "fraud", "brib", "corrupt", "embezzl"),
					terms(2, "kickback", "falsif", "launder", "misappropriat", "fake invoice", "cooking the books"),
					terms(1.5, "steal", "stole", "theft", "forged", "forgery"),
					terms(0.5, "invoice", "expense", "accounting"),
				),
				Patterns: []WeightedTerm{
					{Term: `\$\s?\d[\d,.]*`, Weight: 0.5},
				},
			},
			{
				Category: CategorySafety,
				Terms: join(
					terms(2, "unsafe", "injur", "hazard", "fire exit", "protective equipment"),
					terms(1.5, "safety", "accident", "ppe", "toxic", "chemical", "fall protection"),
					terms(1, "ventilation", "helmet", "dangerous", "machinery"),
				),
			},
			{
				Category: CategoryPolicy,
				Terms: join(
					terms(2, "code of conduct", "conflict of interest"),
					terms(1.5, "policy", "policies", "complian"),
					terms(1, "violat", "regulation", "procedure", "unpaid overtime", "confidential"),
				),
			},
			{
				Category: CategoryTechnical,
				Terms: join(
					terms(1.5, "bug", "crash", "outage", "not working", "broken", "freez"),
					terms(1, "system", "error", "server", "software", "login", "password", "network", "printer", "computer", "laptop", "website"),
				),
			},
		},
		UrgencyMarkers: join(
			terms(3, "kill", "suicid", "weapon", "assault", "violen", "rape", "life-threatening"),
			terms(1.5, "threat", "danger", "fear", "afraid", "emergenc", "urgent", "immediat", "injur", "unsafe", "retaliat", "hurt"),
			terms(0.5, "constantly", "daily", "every day", "repeatedly", "always", "ongoing", "weekly", "still"),
		),
		Urgency: UrgencyThresholds{Critical: 4, High: 2, Medium: 1},
		PositiveTerms: []string{
			"good", "great", "thank", "appreciat", "happy", "helpful", "excellent", "glad", "pleased", "improv",
		},
		NegativeTerms: []string{
			"scream", "yell", "threat", "abus", "harass", "bully", "afraid", "fear", "angry", "unfair", "hostile",
			"humiliat", "terrible", "awful", "bad", "hurt", "injur", "steal", "stole", "fraud", "discriminat", "unsafe",
			"danger", "worr", "stress", "insult", "intimidat", "upset", "sad", "horrible", "disgust", "broken",
		},
		SentimentScale: 3,
		SpamPhrases: []string{
			"buy now", "click here", "free money", "limited offer", "act now", "you are a winner", "casino",
			"viagra", "earn money", "promo code", "discount", "subscribe", "lorem ipsum", "asdf", "qwerty", "this is a test",
		},
		Spam: SpamWeights{
			TooShort:    0.3,
			Repetition:  0.4,
			NoKeyword:   0.25,
			URL:         0.3,
			Phrase:      0.25,
			Punctuation: 0.1,
			LowVariety:  0.2,
		},
		ConfidenceSaturation: 4,
	}
}
