package reminders

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/campusshelf/library-backend/pkg/db/models"
	"github.com/campusshelf/library-backend/pkg/mailer"
	"github.com/shopspring/decimal"
)

const (
	KindDueSoon = "due_soon"
	KindOverdue = "overdue"
)

type reminderView struct {
	Name        string
	Title       string
	Author      string
	DueDate     string
	DaysLeft    int
	DaysOverdue int
	Fine        string
	Overdue     bool
}

var plainTmpl = template.Must(template.New("plain").Parse(`Hello {{.Name}},

{{if .Overdue}}"{{.Title}}" by {{.Author}} was due on {{.DueDate}} and is {{.DaysOverdue}} day(s) overdue.
Fines accrued so far: {{.Fine}}. Please return it as soon as possible.
{{else}}"{{.Title}}" by {{.Author}} is due on {{.DueDate}}{{if gt .DaysLeft 0}} ({{.DaysLeft}} day(s) left){{end}}.
Please return or renew it before the due date to avoid fines.
{{end}}
University Library
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Hello {{.Name}},</p>
{{if .Overdue}}<p><strong>{{.Title}}</strong> by {{.Author}} was due on {{.DueDate}} and is {{.DaysOverdue}} day(s) overdue.</p>
<p>Fines accrued so far: <strong>{{.Fine}}</strong>. Please return it as soon as possible.</p>
{{else}}<p><strong>{{.Title}}</strong> by {{.Author}} is due on {{.DueDate}}.</p>
<p>Please return or renew it before the due date to avoid fines.</p>
{{end}}<p>University Library</p>`))

// kindFor classifies a record relative to now.
func kindFor(due, now time.Time) string {
	if now.After(due) {
		return KindOverdue
	}
	return KindDueSoon
}

func buildMessage(rec *models.BorrowRecord, kind string, now time.Time, daysOverdue int, fine decimal.Decimal) (mailer.Message, error) {
	if rec.User == nil || rec.Book == nil || rec.DueDate == nil {
		return mailer.Message{}, fmt.Errorf("record %s is missing user, book or due date", rec.ID)
	}
	view := reminderView{
		Name:        rec.User.Name,
		Title:       rec.Book.Title,
		Author:      rec.Book.Author,
		DueDate:     rec.DueDate.UTC().Format("Mon, 02 Jan 2006"),
		DaysLeft:    int(rec.DueDate.Sub(now).Hours() / 24),
		DaysOverdue: daysOverdue,
		Fine:        fine.StringFixed(2),
		Overdue:     kind == KindOverdue,
	}

	subject := fmt.Sprintf("Reminder: %q is due soon", rec.Book.Title)
	if view.Overdue {
		subject = fmt.Sprintf("Overdue: %q", rec.Book.Title)
	}

	var plain, html bytes.Buffer
	if err := plainTmpl.Execute(&plain, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render plain reminder: %w", err)
	}
	if err := htmlTmpl.Execute(&html, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render html reminder: %w", err)
	}

	return mailer.Message{
		ToName:    rec.User.Name,
		ToAddress: rec.User.Email,
		Subject:   subject,
		PlainText: plain.String(),
		HTML:      html.String(),
	}, nil
}
