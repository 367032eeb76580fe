package extract

import (
	"strconv"
	"strings"
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

// CardinalValue converts the literal text of a CARDINAL entity to an integer.
// A non-numeric cardinal is a miss, not an error.
func CardinalValue(text string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if n, ok := wordNumbers[s]; ok {
		return n, true
	}
	return 0, false
}
