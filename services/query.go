package services

import (
	"sort"
	"strings"

	"washcenter-backend/models"
)

type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortRating      SortKey = "rating"
	SortDistance    SortKey = "distance"
	SortNameAsc     SortKey = "name-asc"
)

// ParseSortKey maps an empty key to SortRecommended and rejects unknown keys.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(raw)); k {
	case "":
		return SortRecommended, nil
	case SortRecommended, SortRating, SortDistance, SortNameAsc:
		return k, nil
	default:
		return "", invalid("sort", "must be one of recommended, rating, distance, name-asc")
	}
}

// FilterAndSort returns the centers matching queryText ordered by sortKey.
// The input slice is never modified and every sort is stable, so equal keys
// keep their input order and repeated calls give identical output.
func FilterAndSort(centers []models.Center, queryText string, sortKey SortKey) []models.Center {
	q := strings.ToLower(strings.TrimSpace(queryText))

	out := make([]models.Center, 0, len(centers))
	for _, c := range centers {
		if matchesQuery(&c, q) {
			out = append(out, c)
		}
	}

	switch sortKey {
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortDistance:
		// centers without a distance go last
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DistanceKm, out[j].DistanceKm
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
	case SortNameAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

func matchesQuery(c *models.Center, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Location), q) {
		return true
	}
	for _, s := range c.Services {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
