package service

import "regexp"

var (
	resetRe    = regexp.MustCompile(`(?i)\b(reset|start over|restart|new search)\b`)
	nextRe     = regexp.MustCompile(`(?i)\bnext\b`)
	affirmRe   = regexp.MustCompile(`(?i)\b(yes|yeah|yep|sure|proceed|confirm|book|ok|okay|do it)\b`)
	negationRe = regexp.MustCompile(`(?i)\b(no|not|don'?t|do not|cancel|stop|wait)\b`)
	delegateRe = regexp.MustCompile(`(?i)\b(you pick|you choose|surprise me|anywhere|recommend\w*)\b`)

	// bare selections: "2", "#2", "option 2", "hotel 2", "number 2"
	selectNumRe = regexp.MustCompile(`(?i)^\s*(?:#|(?:option|hotel|number)\s*#?)?\s*(\d{1,2})\s*[.!]?\s*$`)
	ordinalRe   = regexp.MustCompile(`(?i)^\s*(?:the\s+)?(first|second|third|fourth|fifth|1st|2nd|3rd|4th|5th)(?:\s+(?:one|hotel|option))?(?:\s+please)?\s*[.!]?\s*$`)
	bareYesRe   = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|sure|ok|okay|yes please|sounds good|let'?s do it|book it|that one)\s*[.!]*\s*$`)

	// "hotel 2", "#2", "number 2" inside an info question
	hotelRefRe = regexp.MustCompile(`(?i)(?:#|\b(?:hotel|option|number)\s*#?)\s*(\d{1,2})\b`)
)

var ordinals = map[string]int{
	"first": 0, "second": 1, "third": 2, "fourth": 3, "fifth": 4,
	"1st": 0, "2nd": 1, "3rd": 2, "4th": 3, "5th": 4,
}

// maxSelectable is the largest bare number read as a hotel pick.
const maxSelectable = 10

func affirms(msg string) bool {
	return affirmRe.MatchString(msg) && !negationRe.MatchString(msg)
}
