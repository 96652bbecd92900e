// Package status holds the class and label logic behind the status page timeline.
package status

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/gitshopapp/trackpage/internal/models"
)

const (
	stepBase  = "flex gap-4 py-3 text-sm text-gray-500"
	dotBase   = "mt-1 h-3 w-3 shrink-0 rounded-full bg-gray-300"
	badgeBase = "inline-block rounded-full px-3 py-1 text-xs font-semibold bg-gray-100 text-gray-700"
)

// StepClasses returns the classes for one timeline row. Later arguments win
// over the defaults.
func StepClasses(event models.TrackingEvent, extra ...string) string {
	classes := []string{stepBase}
	switch {
	case event.IsDelivered && event.Completed:
		classes = append(classes, "text-green-700 font-semibold")
	case event.Current:
		classes = append(classes, "text-blue-700 font-semibold")
	case event.Completed:
		classes = append(classes, "text-gray-900")
	}
	classes = append(classes, extra...)
	return twmerge.Merge(classes...)
}

func DotClasses(event models.TrackingEvent) string {
	switch {
	case event.IsDelivered && event.Completed:
		return twmerge.Merge(dotBase, "bg-green-600")
	case event.Current:
		return twmerge.Merge(dotBase, "bg-blue-600 ring-4 ring-blue-100")
	case event.Completed:
		return twmerge.Merge(dotBase, "bg-gray-900")
	default:
		return dotBase
	}
}

// Headline summarizes a page as a short label plus badge classes.
func Headline(page *models.StatusPage) (string, string) {
	if page == nil {
		return "Unavailable", badgeBase
	}
	if page.IsDelivered {
		return models.StatusDelivered, twmerge.Merge(badgeBase, "bg-green-100 text-green-800")
	}
	if current := page.CurrentEvent(); current != nil {
		return current.Status, twmerge.Merge(badgeBase, "bg-blue-100 text-blue-800")
	}
	if latest := page.LatestEvent(); latest != nil {
		return latest.Status, badgeBase
	}
	return "Processing", badgeBase
}

// Newest returns the events latest first without touching the page.
func Newest(events []models.TrackingEvent) []models.TrackingEvent {
	out := make([]models.TrackingEvent, len(events))
	for i, event := range events {
		out[len(events)-1-i] = event
	}
	return out
}
