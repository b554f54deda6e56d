package handler

import "html/template"

const ResetPageName = "reset.html"

// ResetPageTemplate is installed on the engine with SetHTMLTemplate.
var ResetPageTemplate = template.Must(template.New(ResetPageName).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Reset password</title>
  <style>
    body { font-family: sans-serif; max-width: 24rem; margin: 4rem auto; }
    input, button { display: block; width: 100%; margin-top: .5rem; padding: .5rem; }
  </style>
</head>
<body>
  <h1>Reset password</h1>
  <p>Choose a new password for {{.Email}}.</p>
  <form method="post" action="{{.Action}}">
    <label for="password">New password</label>
    <input id="password" name="password" type="password" minlength="{{.MinLength}}" maxlength="{{.MaxLength}}" required>
    <button type="submit">Update password</button>
  </form>
</body>
</html>
`))

type resetPageData struct {
	Email     string
	Action    string
	MinLength int
	MaxLength int
}
