package domain

import "sort"

// MissingDays returns the dates in window that none of ranges cover, ascending.
// Ranges may overlap and may extend beyond the window.
func MissingDays(window DateRange, ranges []DateRange) []Date {
	if window.From.After(window.Until) {
		return nil
	}

	clipped := make([]DateRange, 0, len(ranges))
	for _, r := range ranges {
		if r.From.After(r.Until) || r.Until.Before(window.From) || r.From.After(window.Until) {
			continue
		}
		if r.From.Before(window.From) {
			r.From = window.From
		}
		if r.Until.After(window.Until) {
			r.Until = window.Until
		}
		clipped = append(clipped, r)
	}
	sort.Slice(clipped, func(i, j int) bool { return clipped[i].From.Before(clipped[j].From) })

	var missing []Date
	cursor := window.From
	for _, r := range clipped {
		for cursor.Before(r.From) {
			missing = append(missing, cursor)
			cursor = cursor.AddDays(1)
		}
		if !r.Until.Before(cursor) {
			cursor = r.Until.AddDays(1)
		}
	}
	for !cursor.After(window.Until) {
		missing = append(missing, cursor)
		cursor = cursor.AddDays(1)
	}
	return missing
}
