package runware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureTriggerWord(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"inserted after portrait phrase", "portrait of a woman in a blue blazer", "portrait of a img woman in a blue blazer"},
		{"inserted after photo phrase", "Professional photo of an engineer", "Professional photo of an img engineer"},
		{"matches phrase case-insensitively", "HEADSHOT OF A man, studio light", "HEADSHOT OF A img man, studio light"},
		{"only first phrase is used", "picture of a man next to a picture of a dog", "picture of a img man next to a picture of a dog"},
		{"prepended without phrase", "corporate headshot, grey backdrop", "img corporate headshot, grey backdrop"},
		{"unchanged when present", "portrait of a img woman", "portrait of a img woman"},
		{"unchanged when present in other case", "IMG person smiling", "IMG person smiling"},
		{"word inside another word does not count", "image of a person", "image of a img person"},
		{"empty prompt", "", "img"},
		{"padded prompt with trigger is untouched", "  portrait of a img woman \n", "  portrait of a img woman \n"},
		{"padded prompt without trigger is trimmed", "  corporate headshot  ", "img corporate headshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnsureTriggerWord(tt.prompt, DefaultTriggerWord))
		})
	}
}

func TestEnsureTriggerWordIdempotent(t *testing.T) {
	prompts := []string{"portrait of a woman", "corporate headshot", "image of an astronaut"}
	for _, p := range prompts {
		once := EnsureTriggerWord(p, "img")
		assert.Equal(t, once, EnsureTriggerWord(once, "img"), p)
	}
}

func TestEnsureTriggerWordCustomToken(t *testing.T) {
	assert.Equal(t, "photo of a ohwx man", EnsureTriggerWord("photo of a man", "ohwx"))
	assert.Equal(t, "img man", EnsureTriggerWord("man", ""))
}

func TestWordPatternCached(t *testing.T) {
	assert.Same(t, wordPattern(DefaultTriggerWord), wordPattern(DefaultTriggerWord))
	assert.Same(t, wordPattern("ohwx"), wordPattern("ohwx"))
	assert.True(t, wordPattern("a.b").MatchString("photo of a.b man"))
	assert.False(t, wordPattern("a.b").MatchString("photo of axb man"))
}
