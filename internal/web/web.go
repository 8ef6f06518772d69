// Package web holds the server-rendered registration page.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templates embed.FS

// NewEngine returns the view engine for fiber.Config.Views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		// the embed pattern guarantees the directory exists
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	for name, fn := range Funcs() {
		engine.AddFunc(name, fn)
	}

	return engine
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"initial":   Initial,
		"longDate":  func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
		"shortDate": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006") },
	}
}

// Initial is the upper-cased first letter of name, used as the avatar.
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}
