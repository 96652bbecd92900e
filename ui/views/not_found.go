package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func NotFoundPage() templ.Component {
	return messagePage("Tracking page not found",
		"This tracking link has expired or does not exist. Please contact the store for an updated link.")
}

func ErrorPage() templ.Component {
	return messagePage("Something went wrong",
		"We could not load this tracking page right now. Please try again in a few minutes.")
}

func messagePage(heading, message string) templ.Component {
	return layout(heading, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<section class="rounded-lg bg-white p-6 text-center shadow-sm"><h1 class="mb-2 text-xl font-semibold">`)
		hw.text(heading)
		hw.raw(`</h1><p class="text-sm text-gray-500">`)
		hw.text(message)
		hw.raw(`</p></section>`)
		return hw.err
	}))
}
