package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// Normalize canonicalizes a free-text identifier before it is used as a map
// key or compared for equality: square-bracket artifacts are stripped and
// surrounding whitespace trimmed, so spreadsheet formatting noise never
// fragments otherwise-identical keys.
func Normalize(s string) string {
	return strings.TrimSpace(bracketStripper.Replace(s))
}

// NormalizeValue normalizes a raw cell value of any type. Missing cells
// become the empty string; numeric cells are rendered without a decimal tail
// so an id typed as a number compares equal to the same id typed as text.
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return Normalize(fmt.Sprint(t))
	}
}
