package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"policyportal/models"
	"policyportal/platform/mailer"
	"policyportal/services/notify"

	"github.com/google/uuid"
)

// Shared wrapper for every email: header with the organisation name, the
// message body and a footer.
const layoutHTML = `<!DOCTYPE html>
<html>
<body style="font-family:sans-serif;background-color:#F6F6F6;margin:0;padding:0">
	<div style="max-width:600px;margin:0 auto;padding:24px">
		<div style="background:#1e3a5f;padding:20px 24px;border-radius:8px 8px 0 0">
			<h1 style="color:#ffffff;margin:0;font-size:20px">{{.Org}}</h1>
			<p style="color:#93c5fd;margin:4px 0 0;font-size:13px">Policy &amp; Procedure Platform</p>
		</div>
		<div style="background:#f8fafc;padding:24px;border:1px solid #e2e8f0;border-top:none;border-radius:0 0 8px 8px">
			<p style="margin:0 0 16px">Hi {{.Name}},</p>
			{{template "content" .}}
			<p style="margin:24px 0 0;font-size:12px;color:#64748b">{{.Org}} &bull; Policy Management Platform</p>
		</div>
	</div>
</body>
</html>`

const publishedHTML = `{{define "content"}}
<p style="margin:0 0 16px">A new policy has been published that requires your attention:</p>
<div style="background:#ffffff;border:1px solid #e2e8f0;border-radius:6px;padding:16px;margin:0 0 24px">
	<p style="margin:0;font-weight:600;font-size:16px">{{.Title}}</p>
</div>
<p style="margin:0 0 24px">Please read and confirm you have understood this document at your earliest opportunity.</p>
<a href="{{.URL}}" style="background:#1e3a5f;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;display:inline-block;font-weight:600">Read Document</a>
{{end}}`

const reminderHTML = `{{define "content"}}
<p style="margin:0 0 16px">This is a friendly reminder that you have not yet read the following document:</p>
<div style="background:#fff7ed;border:1px solid #fed7aa;border-radius:6px;padding:16px;margin:0 0 24px">
	<p style="margin:0;font-weight:600;font-size:16px">{{.Title}}</p>
</div>
<p style="margin:0 0 24px">Please take a moment to read and confirm your understanding of this document.</p>
<a href="{{.URL}}" style="background:#1e3a5f;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;display:inline-block;font-weight:600">Read Now</a>
{{end}}`

const digestHTML = `{{define "content"}}
<p style="margin:0 0 16px">The following published policies are due for review.</p>
{{if .Overdue}}
<p style="margin:0 0 8px;font-weight:600;color:#dc2626">Overdue</p>
<ul style="margin:0 0 16px">{{range .Overdue}}<li>{{.Title}} (review date {{reviewDate .ReviewDate}})</li>{{end}}</ul>
{{end}}
{{if .DueSoon}}
<p style="margin:0 0 8px;font-weight:600;color:#d97706">Due soon</p>
<ul style="margin:0 0 16px">{{range .DueSoon}}<li>{{.Title}} (review date {{reviewDate .ReviewDate}})</li>{{end}}</ul>
{{end}}
<a href="{{.URL}}" style="background:#1e3a5f;color:#ffffff;padding:12px 24px;border-radius:6px;text-decoration:none;display:inline-block;font-weight:600">Open Dashboard</a>
{{end}}`

var funcs = template.FuncMap{
	"reviewDate": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	},
}

var (
	layout            = template.Must(template.New("layout").Funcs(funcs).Parse(layoutHTML))
	publishedTemplate = template.Must(template.Must(layout.Clone()).Parse(publishedHTML))
	reminderTemplate  = template.Must(template.Must(layout.Clone()).Parse(reminderHTML))
	digestTemplate    = template.Must(template.Must(layout.Clone()).Parse(digestHTML))
)

type emailData struct {
	Org     string
	Name    string
	Title   string
	URL     string
	Overdue []models.Document
	DueSoon []models.Document
}

// EmailService renders the portal's emails and hands them to the mailer.
type EmailService struct {
	Mailer  mailer.Mailer
	OrgName string
	AppURL  string
}

func (s *EmailService) DocumentURL(id uuid.UUID) string {
	return strings.TrimRight(s.AppURL, "/") + "/carer/documents/" + id.String()
}

// DocumentPublished tells a carer a new policy is available.
func (s *EmailService) DocumentPublished(ctx context.Context, doc models.Document, to notify.Recipient) error {
	return s.send(ctx, to, "New Policy Published: "+doc.Title, publishedTemplate, emailData{
		Title: doc.Title,
		URL:   s.DocumentURL(doc.ID),
	})
}

// Reminder nudges a carer who has not confirmed a published policy.
func (s *EmailService) Reminder(ctx context.Context, doc models.Document, to notify.Recipient) error {
	return s.send(ctx, to, fmt.Sprintf("Reminder: Please read %q", doc.Title), reminderTemplate, emailData{
		Title: doc.Title,
		URL:   s.DocumentURL(doc.ID),
	})
}

// ReviewDigest lists policies whose review date has passed or is close.
func (s *EmailService) ReviewDigest(ctx context.Context, to notify.Recipient, overdue, dueSoon []models.Document) error {
	subject := fmt.Sprintf("Policy review digest: %d overdue, %d due soon", len(overdue), len(dueSoon))
	return s.send(ctx, to, subject, digestTemplate, emailData{
		URL:     strings.TrimRight(s.AppURL, "/") + "/admin",
		Overdue: overdue,
		DueSoon: dueSoon,
	})
}

func (s *EmailService) send(ctx context.Context, to notify.Recipient, subject string, tmpl *template.Template, data emailData) error {
	data.Org = s.OrgName
	data.Name = to.Name
	if data.Name == "" {
		data.Name = to.Email
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("render %q: %w", subject, err)
	}
	return s.Mailer.Send(ctx, mailer.Message{
		ToEmail: to.Email,
		ToName:  to.Name,
		Subject: subject,
		HTML:    body.String(),
	})
}
