package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStore_TriggerAndTags(t *testing.T) {
	k := NewKeyword()

	cmd := k.ParseStore("Hey Memento, remember that my dentist appointment is next Tuesday #health #important")

	assert.ElementsMatch(t, []string{"health", "important"}, cmd.Tags)
	assert.Empty(t, cmd.Category, "no category cluster keyword appears")
	assert.Equal(t, "that my dentist appointment is next tuesday", cmd.Content)
	assert.NotContains(t, cmd.Content, "memento")
	assert.NotContains(t, cmd.Content, "#")
}

func TestParseStore_CategoryClusters(t *testing.T) {
	k := NewKeyword()

	cases := []struct {
		text     string
		category string
	}{
		{"remember the project deadline is Friday", "work"},
		{"store that my family dinner is on Sunday", "personal"},
		{"save this idea for the newsletter", "ideas"},
		{"remember todo: renew passport", "tasks"},
		{"remember the wifi password", ""},
	}
	for _, tc := range cases {
		cmd := k.ParseStore(tc.text)
		assert.Equal(t, tc.category, cmd.Category, "text: %s", tc.text)
	}
}

func TestParseStore_FirstClusterWins(t *testing.T) {
	k := NewKeyword()

	// "meeting" (work) and "friend" (personal) both appear; work is probed
	// first and wins.
	cmd := k.ParseStore("remember the meeting with my friend")
	assert.Equal(t, "work", cmd.Category)
}

func TestParseStore_Importance(t *testing.T) {
	k := NewKeyword()

	assert.Equal(t, ImportanceHigh, k.ParseStore("remember this urgent deadline").Importance)
	assert.Equal(t, ImportanceLow, k.ParseStore("remember this minor detail").Importance)
	assert.Equal(t, ImportanceDefault, k.ParseStore("remember the wifi password").Importance)
}

func TestParseStore_ImportanceWordsStrippedFromContent(t *testing.T) {
	k := NewKeyword()

	cmd := k.ParseStore("remember urgent call the plumber")
	assert.Equal(t, ImportanceHigh, cmd.Importance)
	assert.NotContains(t, cmd.Content, "urgent")
}

func TestParseRecall_TimePhrases(t *testing.T) {
	k := NewKeyword()

	cases := []struct {
		text     string
		daysBack int
	}{
		{"what did i save today", 1},
		{"show me yesterday", 2},
		{"find notes from this week", 7},
		{"recall last week", 14},
		{"what happened this month", 30},
		{"show me last month", 60},
		{"find everything from this year", 365},
		{"show me everything", 0},
	}
	for _, tc := range cases {
		cmd := k.ParseRecall(tc.text)
		assert.Equal(t, tc.daysBack, cmd.DaysBack, "text: %s", tc.text)
	}
}

func TestParseRecall_FirstTimePhraseWins(t *testing.T) {
	k := NewKeyword()

	cmd := k.ParseRecall("recall today and last week")
	assert.Equal(t, 1, cmd.DaysBack, "no combination of multiple time phrases")
}

func TestParseRecall_CategoryAndResidualQuery(t *testing.T) {
	k := NewKeyword()

	cmd := k.ParseRecall("Hey Memento, what about the dentist this week")
	assert.Equal(t, 7, cmd.DaysBack)
	assert.Empty(t, cmd.Category)
	assert.Equal(t, "the dentist", cmd.Query)

	cmd = k.ParseRecall("show me my work notes")
	assert.Equal(t, "work", cmd.Category)
	assert.Equal(t, 0, cmd.DaysBack)
}

func TestParseRecall_EmptyQuery(t *testing.T) {
	k := NewKeyword()

	cmd := k.ParseRecall("show me this week")
	assert.Equal(t, 7, cmd.DaysBack)
	assert.Empty(t, cmd.Query)
}

func TestParse_NeverFails(t *testing.T) {
	k := NewKeyword()

	for _, text := range []string{"", "   ", "###", "remember", "what"} {
		store := k.ParseStore(text)
		assert.NotNil(t, store)
		assert.Equal(t, ImportanceDefault, store.Importance)

		recall := k.ParseRecall(text)
		assert.NotNil(t, recall)
	}
}
