package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// A template renders subject, plain-text body and HTML body from job data.
type emailTemplate struct {
	subject string
	text    *texttpl.Template
	html    *htmpl.Template
}

var registry = map[string]emailTemplate{
	"welcome": {
		subject: "Welcome to roster",
		text: texttpl.Must(texttpl.New("welcome_text").Parse(
			"Hi {{.Name}},\n\nYour account is ready. You can sign in with the email address this message was sent to.\n\nThe roster team\n")),
		html: htmpl.Must(htmpl.New("welcome_html").Parse(
			`<html><body style="font-family:sans-serif">` +
				`<h2>Welcome, {{.Name}}!</h2>` +
				`<p>Your account is ready. You can sign in with the email address this message was sent to.</p>` +
				`<p>The roster team</p>` +
				`</body></html>`)),
	},
}

// Render produces subject, text and HTML for a named template. Unknown
// names are an error so the worker can drop the job instead of sending a
// blank email.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var tb, hb bytes.Buffer
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	if err := t.html.Execute(&hb, data); err != nil {
		return "", "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	return t.subject, tb.String(), hb.String(), nil
}
