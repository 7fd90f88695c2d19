package mailer

import (
	"bytes"
	"context"
	"html/template"
)

// Message is a rendered email ready to be dispatched.
type Message struct {
	To      string
	Subject string
	// HTML body
	Body string
}

// Mailer sends a templated email to an address.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const resetPasswordSubject = "Reset your password"

var resetPasswordTemplate = template.Must(template.New("reset_password").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. Click the link below to choose a new one:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>The link expires in {{.ExpiresInMinutes}} minutes. If you did not ask for a reset you can ignore this email.</p>
`))

// RenderResetPassword builds the password reset email for the given address.
func RenderResetPassword(to, name, link string, expiresInMinutes int64) (Message, error) {
	var body bytes.Buffer
	err := resetPasswordTemplate.Execute(&body, struct {
		Name             string
		Link             string
		ExpiresInMinutes int64
	}{
		Name:             name,
		Link:             link,
		ExpiresInMinutes: expiresInMinutes,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: resetPasswordSubject, Body: body.String()}, nil
}
