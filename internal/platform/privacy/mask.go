package privacy

import "strings"

// MaskCardNumber hides all but the last four characters of an identity card
// number. Dashes are kept: "GHA-123456789-0" -> "***-******789-0".
func MaskCardNumber(card string) string {
	runes := []rune(strings.TrimSpace(card))
	seen := 0
	for i := len(runes) - 1; i >= 0; i-- {
		switch {
		case runes[i] == '-':
		case seen < 4:
			seen++
		default:
			runes[i] = '*'
		}
	}
	return string(runes)
}
