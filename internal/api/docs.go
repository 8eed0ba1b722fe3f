package api

import (
	"fmt"
	"html"
)

const docsTemplate = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>%[1]s</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <elements-api
    apiDescriptionUrl="%[2]s"
    router="hash"
    layout="sidebar"
    hideSchemas
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

// docsPage renders the interactive reference for the OpenAPI document at specURL.
func docsPage(title, specURL string) string {
	return fmt.Sprintf(docsTemplate, html.EscapeString(title), html.EscapeString(specURL))
}
