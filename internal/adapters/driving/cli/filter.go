package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
)

// filterFlags binds the FilterSpec predicates to a command's flags.
type filterFlags struct {
	category      string
	status        string
	urgency       string
	minUrgency    string
	from          string
	to            string
	minConfidence float64
	includeSpam   bool
	text          string
	sort          string
	desc          bool
	limit         int

	flags *pflag.FlagSet
}

func (f *filterFlags) register(flags *pflag.FlagSet) {
	f.flags = flags
	flags.StringVar(&f.category, "category", "", "Filter by category (name or slug, e.g. fraud)")
	flags.StringVar(&f.status, "status", "", "Filter by status (pending, in-review, resolved)")
	flags.StringVar(&f.urgency, "urgency", "", "Filter by exact urgency (low, medium, high, critical)")
	flags.StringVar(&f.minUrgency, "min-urgency", "", "Keep complaints at or above this urgency")
	flags.StringVar(&f.from, "from", "", "Earliest submission date (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "Latest submission date, inclusive (YYYY-MM-DD)")
	flags.Float64Var(&f.minConfidence, "min-confidence", 0, "Minimum classification confidence (0-1)")
	flags.BoolVar(&f.includeSpam, "include-spam", false, "Include complaints flagged as spam")
	flags.StringVar(&f.text, "text", "", "Case-insensitive text search")
	flags.StringVar(&f.sort, "sort", "", "Sort by created_at, urgency, spam_score, confidence or category")
	flags.BoolVar(&f.desc, "desc", false, "Sort in descending order")
	flags.IntVarP(&f.limit, "limit", "n", 0, "Maximum number of complaints (0 = all)")
}

// spec builds and validates the filter from the parsed flags.
func (f *filterFlags) spec() (domain.FilterSpec, error) {
	spec := domain.FilterSpec{
		IncludeFlaggedSpam: f.includeSpam,
		Text:               f.text,
		Sort:               domain.SortKey(f.sort),
		Desc:               f.desc,
		Limit:              f.limit,
	}

	if f.category != "" {
		c, err := domain.ParseCategory(f.category)
		if err != nil {
			return spec, err
		}
		spec.Category = &c
	}
	if f.status != "" {
		s, err := domain.ParseStatus(f.status)
		if err != nil {
			return spec, err
		}
		spec.Status = &s
	}
	if f.urgency != "" {
		u, err := domain.ParseUrgency(f.urgency)
		if err != nil {
			return spec, err
		}
		spec.Urgency = &u
	}
	if f.minUrgency != "" {
		u, err := domain.ParseUrgency(f.minUrgency)
		if err != nil {
			return spec, err
		}
		spec.MinUrgency = &u
	}
	if f.from != "" {
		t, err := parseDate(f.from)
		if err != nil {
			return spec, err
		}
		spec.From = &t
	}
	if f.to != "" {
		t, err := parseDate(f.to)
		if err != nil {
			return spec, err
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		spec.To = &end
	}
	if f.flags != nil && f.flags.Changed("min-confidence") {
		spec.MinConfidence = domain.Ptr(f.minConfidence)
	}

	return spec, spec.Validate()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}
