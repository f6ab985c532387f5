// Package interpreter turns free-text natural-language commands into
// structured store and recall requests using lexical pattern matching.
//
// The keyword interpreter is a deliberately simple heuristic, not a general
// NLU system: the first matching keyword cluster wins, there is no weighting
// or multi-category assignment, and only one time phrase is honored per
// command. It is pure and stateless so it can be swapped for a model-based
// classifier without touching the storage core.
package interpreter

import (
	"regexp"
	"strings"
)

// Importance levels assigned from lexical cues.
const (
	ImportanceLow     = 3
	ImportanceDefault = 5
	ImportanceHigh    = 8
)

// StoreCommand is the structured form of a storage request.
type StoreCommand struct {
	// Content is the payload text with trigger phrases, hashtags and
	// importance keywords stripped.
	Content string `json:"content"`

	// Category is the first matching category cluster, empty when no
	// cluster keyword appears (callers default it to "general").
	Category string `json:"category"`

	// Tags holds every #word token found in the original text.
	Tags []string `json:"tags"`

	// Importance is 8 when an urgency keyword appears, 3 for a minimizer,
	// otherwise 5.
	Importance int `json:"importance"`
}

// RecallCommand is the structured form of a retrieval request.
type RecallCommand struct {
	// Query is the residual search text after stripping triggers, time
	// phrases, category keywords and filler words; empty when nothing
	// remains.
	Query string `json:"query"`

	// Category is the first matching category cluster, empty when none.
	Category string `json:"category"`

	// DaysBack is the time window mapped from the first matching relative
	// time phrase, zero when none.
	DaysBack int `json:"days_back"`
}

// Interpreter extracts structured intent from free text. Implementations are
// best-effort: they always return a structured guess and never fail.
type Interpreter interface {
	ParseStore(text string) *StoreCommand
	ParseRecall(text string) *RecallCommand
}

// categoryCluster maps a category label to its keyword pattern. Clusters are
// probed in order; the first match wins.
type categoryCluster struct {
	name    string
	pattern *regexp.Regexp
}

// timePhrase maps a relative time phrase to a days-back window.
type timePhrase struct {
	pattern  *regexp.Regexp
	daysBack int
}

var (
	storeTriggers  = regexp.MustCompile(`\b(hey memento|memento|remember|store|save)\b`)
	recallTriggers = regexp.MustCompile(`\b(hey memento|memento|recall|remember|what|find|search|show me)\b`)

	storeCategories = []categoryCluster{
		{"work", regexp.MustCompile(`\b(work|job|meeting|project|deadline|office)\b`)},
		{"personal", regexp.MustCompile(`\b(personal|family|friend|home|private)\b`)},
		{"ideas", regexp.MustCompile(`\b(idea|thought|concept|brainstorm|inspiration)\b`)},
		{"tasks", regexp.MustCompile(`\b(todo|task|reminder)\b`)},
	}

	recallCategories = []categoryCluster{
		{"work", regexp.MustCompile(`\b(work|job|meetings?|projects?)\b`)},
		{"personal", regexp.MustCompile(`\b(personal|family|friends?)\b`)},
		{"ideas", regexp.MustCompile(`\b(ideas?|thoughts?)\b`)},
		{"tasks", regexp.MustCompile(`\b(tasks?|todos?|reminders?)\b`)},
	}

	timePhrases = []timePhrase{
		{regexp.MustCompile(`\btoday\b`), 1},
		{regexp.MustCompile(`\byesterday\b`), 2},
		{regexp.MustCompile(`\bthis week\b`), 7},
		{regexp.MustCompile(`\blast week\b`), 14},
		{regexp.MustCompile(`\bthis month\b`), 30},
		{regexp.MustCompile(`\blast month\b`), 60},
		{regexp.MustCompile(`\bthis year\b`), 365},
	}

	hashtagPattern    = regexp.MustCompile(`#(\w+)`)
	highImportance    = regexp.MustCompile(`\b(important|urgent|critical|crucial)\b`)
	lowImportance     = regexp.MustCompile(`\b(minor|small|simple|low)\b`)
	recallFillerWords = regexp.MustCompile(`\b(did i|about|from|for|with|all|my)\b`)
	spaces            = regexp.MustCompile(`\s+`)
)

// Keyword is the lexical Interpreter implementation.
type Keyword struct{}

// NewKeyword returns the keyword-based interpreter.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// ParseStore extracts content, category, tags and importance from a natural
// language storage command.
func (k *Keyword) ParseStore(text string) *StoreCommand {
	clean := storeTriggers.ReplaceAllString(strings.ToLower(text), "")
	clean = tidy(clean)

	category := ""
	for _, cluster := range storeCategories {
		if cluster.pattern.MatchString(clean) {
			category = cluster.name
			break
		}
	}

	var tags []string
	for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
		tags = append(tags, match[1])
	}

	importance := ImportanceDefault
	if highImportance.MatchString(clean) {
		importance = ImportanceHigh
	} else if lowImportance.MatchString(clean) {
		importance = ImportanceLow
	}

	content := hashtagPattern.ReplaceAllString(clean, "")
	content = highImportance.ReplaceAllString(content, "")
	content = lowImportance.ReplaceAllString(content, "")

	return &StoreCommand{
		Content:    tidy(content),
		Category:   category,
		Tags:       tags,
		Importance: importance,
	}
}

// ParseRecall extracts a residual query, a category filter and a time window
// from a natural language retrieval command.
func (k *Keyword) ParseRecall(text string) *RecallCommand {
	clean := recallTriggers.ReplaceAllString(strings.ToLower(text), "")
	clean = tidy(clean)

	daysBack := 0
	for _, phrase := range timePhrases {
		if phrase.pattern.MatchString(clean) {
			daysBack = phrase.daysBack
			break
		}
	}

	category := ""
	for _, cluster := range recallCategories {
		if cluster.pattern.MatchString(clean) {
			category = cluster.name
			break
		}
	}

	query := clean
	for _, phrase := range timePhrases {
		query = phrase.pattern.ReplaceAllString(query, "")
	}
	for _, cluster := range recallCategories {
		query = cluster.pattern.ReplaceAllString(query, "")
	}
	query = recallFillerWords.ReplaceAllString(query, "")

	return &RecallCommand{
		Query:    tidy(query),
		Category: category,
		DaysBack: daysBack,
	}
}

// tidy collapses whitespace and trims leftover punctuation from the edges of
// text that had words cut out of it.
func tidy(text string) string {
	text = spaces.ReplaceAllString(text, " ")
	return strings.Trim(text, " \t,.!?:;")
}
