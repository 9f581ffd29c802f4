package mailer

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

type Mailer struct {
	dialer *mail.Dialer
	sender string
}

func New(host string, port int, username, password, sender string) Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return Mailer{
		dialer: dialer,
		sender: sender,
	}
}

type message struct {
	subject   string
	plainBody string
	htmlBody  string
}

func render(templateFile string, data any) (*message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, err
	}

	plainBody := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, err
	}

	htmlTmpl, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, err
	}

	htmlBody := new(bytes.Buffer)
	if err := htmlTmpl.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return nil, err
	}

	return &message{
		subject:   subject.String(),
		plainBody: plainBody.String(),
		htmlBody:  htmlBody.String(),
	}, nil
}

// Send renders templateFile with data and delivers it, retrying up to three times.
func (m Mailer) Send(recipient, templateFile string, data any) error {
	rendered, err := render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", rendered.subject)
	msg.SetBody("text/plain", rendered.plainBody)
	msg.AddAlternative("text/html", rendered.htmlBody)

	for i := 1; i <= 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}

	return err
}
