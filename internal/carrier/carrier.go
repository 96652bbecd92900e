// Package carrier maps tracking numbers to the carrier that issued them.
package carrier

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	CodeUPS     = "UPS"
	CodeUSPS    = "USPS"
	CodeFedEx   = "FEDEX"
	CodeDHL     = "DHL"
	CodeAmazon  = "AMAZON"
	CodeUnknown = "UNKNOWN"

	fallbackCarrierName = "Carrier"
)

// Result is the classification of a single tracking number.
type Result struct {
	Carrier     string `json:"carrier"`
	CarrierCode string `json:"carrierCode"`
	TrackingURL string `json:"trackingUrl"`
}

type rule struct {
	name        string
	code        string
	pattern     *regexp.Regexp
	urlTemplate string
}

// Rules are evaluated in order. Numeric-only patterns overlap, so USPS must be
// tested before the generic FedEx and DHL length checks.
var rules = []rule{
	{
		name:        "UPS",
		code:        CodeUPS,
		pattern:     regexp.MustCompile(`^1Z[0-9A-Z]{16}$`),
		urlTemplate: "https://www.ups.com/track?tracknum=",
	},
	{
		name:        "USPS",
		code:        CodeUSPS,
		pattern:     regexp.MustCompile(`^(?:94|93|92|91|90|82|81|80|70|23|13|03|04)[0-9]{18,20}$`),
		urlTemplate: "https://tools.usps.com/go/TrackConfirmAction?tLabels=",
	},
	{
		name:        "FedEx",
		code:        CodeFedEx,
		pattern:     regexp.MustCompile(`^(?:[0-9]{12}|[0-9]{14}|[0-9]{15}|[0-9]{20}|[0-9]{22})$`),
		urlTemplate: "https://www.fedex.com/fedextrack/?trknbr=",
	},
	{
		name:        "DHL",
		code:        CodeDHL,
		pattern:     regexp.MustCompile(`^[0-9]{10,11}$`),
		urlTemplate: "https://www.dhl.com/us-en/home/tracking/tracking-express.html?tracking-id=",
	},
	{
		name:        "Amazon Logistics",
		code:        CodeAmazon,
		pattern:     regexp.MustCompile(`^TBA[0-9]{12}$`),
		urlTemplate: "https://track.amazon.com/tracking/",
	},
}

// Classify returns the first carrier whose pattern matches the tracking number.
// Unrecognized numbers fall back to a web search link.
func Classify(trackingNumber string) Result {
	number := Normalize(trackingNumber)
	for _, r := range rules {
		if r.pattern.MatchString(number) {
			return Result{
				Carrier:     r.name,
				CarrierCode: r.code,
				TrackingURL: r.urlTemplate + url.QueryEscape(number),
			}
		}
	}

	return Result{
		Carrier:     fallbackCarrierName,
		CarrierCode: CodeUnknown,
		TrackingURL: "https://www.google.com/search?q=" + url.QueryEscape(strings.TrimSpace(trackingNumber)+" tracking"),
	}
}

// Normalize strips whitespace and upper-cases a tracking number.
func Normalize(trackingNumber string) string {
	return strings.ToUpper(strings.Join(strings.Fields(trackingNumber), ""))
}

type Info struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Carriers lists the recognized carriers in evaluation order.
func Carriers() []Info {
	out := make([]Info, 0, len(rules))
	for _, r := range rules {
		out = append(out, Info{Name: r.name, Code: r.code})
	}
	return out
}
