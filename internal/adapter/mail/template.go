package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/neomorfeo/tenantdesk/internal/domain"
)

var (
	subjectTmpl = template.Must(template.New("subject").Parse(
		`Your administrator account for {{.TenantName}}`))
	bodyTmpl = template.Must(template.New("body").Parse(`Hello,

you have been invited to administer {{if .TenantName}}{{.TenantName}}{{else}}your organization{{end}}.

Activate your account here:
{{.ActivationLink}}

If you did not expect this invitation you can ignore this email.
`))
)

// Message is a rendered invitation email.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func render(from string, inv domain.Invitation) (Message, error) {
	var subject, body bytes.Buffer
	if err := subjectTmpl.Execute(&subject, inv); err != nil {
		return Message{}, fmt.Errorf("rendering subject: %w", err)
	}
	if err := bodyTmpl.Execute(&body, inv); err != nil {
		return Message{}, fmt.Errorf("rendering body: %w", err)
	}
	return Message{From: from, To: inv.Email, Subject: subject.String(), Text: body.String()}, nil
}
