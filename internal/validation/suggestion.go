package validation

import (
	"fmt"
	"sort"
	"strings"
)

func makeSuggestion(prefix string, options []string, input string) string {
	var selected []string
	distances := make(map[string]int)
	for _, opt := range options {
		distance := levenshteinDistance(input, opt)
		threshold := max(len(input)/2, max(len(opt)/2, 1))
		if distance < threshold {
			selected = append(selected, opt)
			distances[opt] = distance
		}
	}

	if len(selected) == 0 {
		return ""
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return distances[selected[i]] < distances[selected[j]]
	})

	parts := make([]string, len(selected))
	for i, opt := range selected {
		parts[i] = fmt.Sprintf("%q", opt)
	}
	return fmt.Sprintf(" %s %s?", prefix, strings.Join(parts, ", "))
}

func levenshteinDistance(s1, s2 string) int {
	column := make([]int, len(s1)+1)
	for y := range column {
		column[y] = y
	}
	for x, rx := range []byte(s2) {
		column[0] = x + 1
		lastdiag := x
		for y, ry := range []byte(s1) {
			olddiag := column[y+1]
			if rx != ry {
				lastdiag++
			}
			column[y+1] = min(column[y+1]+1, min(column[y]+1, lastdiag))
			lastdiag = olddiag
		}
	}
	return column[len(s1)]
}
