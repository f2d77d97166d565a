package practice

import (
	"strings"
	"unicode"

	"github.com/linguaku/linguaku/internal/model"
)

// WordStatus classifies a target word against a scored attempt.
type WordStatus int

const (
	WordMissing WordStatus = iota
	WordCorrect
	WordMistake
)

func (w WordStatus) String() string {
	switch w {
	case WordCorrect:
		return "correct"
	case WordMistake:
		return "mistake"
	default:
		return "missing"
	}
}

// Word is one word of the target text as displayed.
type Word struct {
	Text   string
	Status WordStatus
}

// Highlight marks each word of target. The server's mistake list wins over
// the transcription, so a word that was both said and flagged shows as a
// mistake. Matching ignores case and punctuation.
func Highlight(target string, result *model.PracticeResult) []Word {
	fields := strings.Fields(target)
	if len(fields) == 0 {
		return nil
	}

	mistakes := map[string]bool{}
	spoken := map[string]bool{}
	if result != nil {
		for _, w := range result.MistakeWords {
			mistakes[normalize(w)] = true
		}
		for _, w := range strings.Fields(result.Transcription) {
			spoken[normalize(w)] = true
		}
	}

	out := make([]Word, len(fields))
	for i, f := range fields {
		n := normalize(f)
		status := WordMissing
		switch {
		case mistakes[n]:
			status = WordMistake
		case spoken[n]:
			status = WordCorrect
		}
		out[i] = Word{Text: f, Status: status}
	}
	return out
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}
