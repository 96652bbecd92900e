package views

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/gitshopapp/trackpage/internal/models"
	"github.com/gitshopapp/trackpage/ui/components/status"
)

// StatusPage renders the customer-facing tracking page. Timestamps are shown
// in loc.
func StatusPage(page *models.StatusPage, loc *time.Location) templ.Component {
	if loc == nil {
		loc = time.UTC
	}
	title := "Order " + page.OrderNumber + " tracking"
	return layout(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		label, badge := status.Headline(page)

		hw.raw(`<header class="mb-6">`)
		if name := firstName(page.CustomerName); name != "" {
			hw.raw(`<p class="text-sm text-gray-500">Hi `)
			hw.text(name)
			hw.raw(`,</p>`)
		}
		hw.raw(`<h1 class="text-2xl font-semibold">Order `)
		hw.text(page.OrderNumber)
		hw.raw(`</h1>`)
		hw.rawf(`<span class="%s" data-status>`, templ.EscapeString(badge))
		hw.text(label)
		hw.raw(`</span></header>`)

		hw.raw(`<section class="mb-6 rounded-lg bg-white p-4 shadow-sm"><dl class="grid gap-2 text-sm">`)
		detail(hw, "Carrier", page.Carrier)
		hw.raw(`<div><dt class="text-gray-500">Tracking number</dt><dd>`)
		if page.TrackingURL != "" {
			hw.rawf(`<a class="text-blue-700 underline" rel="noopener noreferrer" target="_blank" href="%s">`,
				templ.EscapeString(string(templ.URL(page.TrackingURL))))
			hw.text(page.TrackingNumber)
			hw.raw(`</a>`)
		} else {
			hw.text(page.TrackingNumber)
		}
		hw.raw(`</dd></div>`)
		detail(hw, "Shipping to", page.Destination)
		if page.DeliveredAt != nil {
			detail(hw, "Delivered", page.DeliveredAt.In(loc).Format("Monday, January 2, 2006"))
		}
		hw.raw(`</dl></section>`)

		hw.raw(`<section class="rounded-lg bg-white p-4 shadow-sm"><h2 class="mb-2 text-lg font-semibold">Shipment progress</h2><ol>`)
		for _, event := range status.Newest(page.Events) {
			hw.rawf(`<li class="%s">`, templ.EscapeString(status.StepClasses(event)))
			hw.rawf(`<span class="%s"></span><div>`, templ.EscapeString(status.DotClasses(event)))
			hw.raw(`<p>`)
			hw.text(event.Status)
			hw.raw(`</p>`)
			if event.Completed {
				hw.raw(`<p class="text-xs text-gray-500">`)
				hw.text(strings.TrimSpace(event.Date + " " + event.Time))
				if event.Location != "" {
					hw.raw(` &middot; `)
					hw.text(event.Location)
				}
				hw.raw(`</p>`)
			}
			hw.raw(`</div></li>`)
		}
		hw.raw(`</ol></section>`)

		hw.raw(`<footer class="mt-6 text-xs text-gray-500">Last updated `)
		hw.text(page.UpdatedAt.In(loc).Format("Jan 2, 2006 3:04 PM MST"))
		hw.raw(`</footer>`)
		return hw.err
	}))
}

func detail(hw *htmlWriter, term, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	hw.raw(`<div><dt class="text-gray-500">`)
	hw.text(term)
	hw.raw(`</dt><dd>`)
	hw.text(value)
	hw.raw(`</dd></div>`)
}

func firstName(full string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
