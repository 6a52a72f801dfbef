package domain

import "strconv"

// SameRanks reports whether two snapshots carry identical ratings for all
// three roles. Owner and timestamp are deliberately excluded, so a fresh
// observation compares equal to the stored one whenever nothing changed.
func SameRanks(a, b RankSnapshot) bool {
	return levelEqual(a.Tank, b.Tank) &&
		levelEqual(a.Damage, b.Damage) &&
		levelEqual(a.Support, b.Support)
}

func levelEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FormatDelta renders the signed change between two observations of a role:
//
//	nil -> v   "+v"  (role newly appeared)
//	v -> nil   "0"   (role disappeared, treated as no signed change)
//	a -> b     b-a, with an explicit leading "+" when positive
func FormatDelta(previous, current *int) string {
	if previous == nil {
		if current == nil {
			return "0"
		}
		return "+" + strconv.Itoa(*current)
	}
	if current == nil {
		return "0"
	}
	diff := *current - *previous
	if diff > 0 {
		return "+" + strconv.Itoa(diff)
	}
	return strconv.Itoa(diff)
}

// FormatLevel renders a rating for embed fields; absent roles print as None.
func FormatLevel(level *int) string {
	if level == nil {
		return "None"
	}
	return strconv.Itoa(*level)
}
