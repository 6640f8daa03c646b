package domain

import (
	"regexp"
	"sort"
	"strconv"
)

var seasonLabelRe = regexp.MustCompile(`^Y(\d+)S(\d+)$`)

// ParseSeasonLabel splits a "Y<year>S<season>" label into its parts.
// Labels that do not match the pattern report ok=false and sort last.
func ParseSeasonLabel(label string) (year, season int, ok bool) {
	m := seasonLabelRe.FindStringSubmatch(label)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	season, _ = strconv.Atoi(m[2])
	return year, season, true
}

// SortSeasonsDesc orders season records newest first by (year, season)
// parsed from the label. The sort is stable so unparseable labels keep
// their relative order at the end.
func SortSeasonsDesc(records []SeasonRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, si, oki := ParseSeasonLabel(records[i].Season)
		yj, sj, okj := ParseSeasonLabel(records[j].Season)
		if oki != okj {
			return oki
		}
		if yi != yj {
			return yi > yj
		}
		return si > sj
	})
}
