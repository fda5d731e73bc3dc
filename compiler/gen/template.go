package gen

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
)

var (
	//go:embed template/*.tmpl
	templateDir embed.FS

	// Funcs are the functions available to the artifact templates.
	Funcs = template.FuncMap{
		"capitalize": capitalize,
		"indent":     indent,
		"join":       strings.Join,
		"lower":      strings.ToLower,
	}

	templates = template.Must(template.New("trpcgen").Funcs(Funcs).ParseFS(templateDir, "template/*.tmpl"))
)

// execute runs the named template and returns its output without
// surrounding whitespace.
func execute(name string, data any) (string, error) {
	var b bytes.Buffer
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", NewGenerationError("template", "", "execute "+name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// indent prefixes every non-empty line of s with n spaces.
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
