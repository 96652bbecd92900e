package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// PageLink is the data rendered into a status page share email.
type PageLink struct {
	PageID         string
	CarrierCode    string
	To             string
	CustomerName   string
	OrderNumber    string
	TrackingNumber string
	Carrier        string
	LatestStatus   string
	LatestDate     string
	URL            string
}

var (
	pageLinkHTML = htmltemplate.Must(htmltemplate.New("page_link_html").Parse(pageLinkHTMLSource))
	pageLinkText = texttemplate.Must(texttemplate.New("page_link_text").Parse(pageLinkTextSource))
)

// RenderPageLink builds the email announcing a status page.
func RenderPageLink(link PageLink) (*Email, error) {
	var htmlBuf, textBuf bytes.Buffer

	if err := pageLinkHTML.Execute(&htmlBuf, link); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := pageLinkText.Execute(&textBuf, link); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Email{
		To:      link.To,
		Subject: fmt.Sprintf("Shipping update for order %s", link.OrderNumber),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
		Tags: map[string]string{
			"page_id": link.PageID,
			"carrier": link.CarrierCode,
		},
	}, nil
}

const pageLinkTextSource = `Hi{{if .CustomerName}} {{.CustomerName}}{{end}},

Here is the latest on your order {{.OrderNumber}}.

Tracking Number: {{.TrackingNumber}}
Carrier: {{.Carrier}}
{{if .LatestStatus}}Latest Update: {{.LatestStatus}}{{if .LatestDate}} ({{.LatestDate}}){{end}}
{{end}}
Follow your shipment: {{.URL}}
`

const pageLinkHTMLSource = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Shipping Update</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .tracking { background: white; padding: 20px; border-radius: 6px; margin: 15px 0; border-left: 4px solid #2563eb; }
    .tracking-number { font-size: 20px; font-weight: bold; color: #2563eb; }
    .button { display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Shipping Update</h1>
    <p>Order {{.OrderNumber}}</p>
  </div>
  <div class="content">
    <p>Hi{{if .CustomerName}} {{.CustomerName}}{{end}}, here is the latest on your order.</p>
    <div class="tracking">
      <p><strong>Carrier:</strong> {{.Carrier}}</p>
      <p class="tracking-number">{{.TrackingNumber}}</p>
      {{if .LatestStatus}}<p><strong>Latest Update:</strong> {{.LatestStatus}}{{if .LatestDate}} ({{.LatestDate}}){{end}}</p>{{end}}
      <a href="{{.URL}}" class="button">View Shipment Status</a>
    </div>
  </div>
</body>
</html>
`
