package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	SubjectResetRequest    = "Password change request"
	SubjectPasswordChanged = "Your password has been changed"
)

var (
	resetRequestTmpl = template.Must(template.New("reset_request").Parse(
		`<p>Hi {{.Name}},<br>Please click on the following <a href="{{.Link}}">link</a> to reset your password. ` +
			`The link expires in {{.ValidFor}}.<br><br>` +
			`If you did not request this, please ignore this email and your password will remain unchanged.</p>`))

	passwordChangedTmpl = template.Must(template.New("password_changed").Parse(
		`<p>Hi {{.Name}},<br>This is a confirmation that the password for your account {{.Email}} has just been changed.</p>`))
)

type ResetRequestData struct {
	Name     string
	Link     string
	ValidFor string
}

type PasswordChangedData struct {
	Name  string
	Email string
}

func RenderResetRequest(data ResetRequestData) (string, error) {
	return render(resetRequestTmpl, data)
}

func RenderPasswordChanged(data PasswordChangedData) (string, error) {
	return render(passwordChangedTmpl, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
