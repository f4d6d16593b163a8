package runware

import (
	"regexp"
	"strings"
	"sync"
)

// DefaultTriggerWord is the token the PhotoMaker model keys identity on.
const DefaultTriggerWord = "img"

// triggerPhrases locates the subject of a portrait-style prompt.
var triggerPhrases = regexp.MustCompile(`(?i)\b(?:portrait|photo|picture|headshot|image) of (?:a|an)\b`)

// wordPatterns caches whole-word matchers by trigger.
var wordPatterns sync.Map

func init() {
	wordPatterns.Store(DefaultTriggerWord, compileWord(DefaultTriggerWord))
}

func compileWord(trigger string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(trigger) + `\b`)
}

func wordPattern(trigger string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(trigger); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := wordPatterns.LoadOrStore(trigger, compileWord(trigger))
	return re.(*regexp.Regexp)
}

// EnsureTriggerWord rewrites prompt so that it contains trigger as a whole
// word. Prompts that already contain it are returned unchanged. Otherwise
// the trimmed prompt gets the trigger right after the first "portrait of
// a"-style phrase, or prepended when no such phrase exists.
func EnsureTriggerWord(prompt, trigger string) string {
	if trigger == "" {
		trigger = DefaultTriggerWord
	}
	if wordPattern(trigger).MatchString(prompt) {
		return prompt
	}

	prompt = strings.TrimSpace(prompt)
	if loc := triggerPhrases.FindStringIndex(prompt); loc != nil {
		end := loc[1]
		return prompt[:end] + " " + trigger + prompt[end:]
	}

	if prompt == "" {
		return trigger
	}
	return trigger + " " + prompt
}
