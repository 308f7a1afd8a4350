// Package render formats customer records for display.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-ports/stratocrm/internal/models"
)

// Formats accepted by Render.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Render formats c according to format.
func Render(c *models.Customer, format string) (string, error) {
	switch format {
	case "", FormatText:
		return Text(c), nil
	case FormatJSON:
		return JSON(c)
	case FormatMarkdown:
		return Markdown(c)
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or markdown)", format)
	}
}

// Text renders the record as labelled lines, with notes joined by ", ".
func Text(c *models.Customer) string {
	notes := "No notes"
	if len(c.Notes) > 0 {
		notes = strings.Join(c.Notes, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Account Number: %s\n", c.AccountNumber)
	fmt.Fprintf(&sb, "Name: %s\n", c.Name)
	fmt.Fprintf(&sb, "Email: %s\n", c.Email)
	fmt.Fprintf(&sb, "Phone: %s\n", c.Phone)
	fmt.Fprintf(&sb, "Notes: %s", notes)
	return sb.String()
}

// JSON renders the record in its storage shape.
func JSON(c *models.Customer) (string, error) {
	rec := *c
	if rec.Notes == nil {
		rec.Notes = make([]string, 0)
	}
	b, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type frontMatter struct {
	AccountNumber string `yaml:"account_number"`
	Email         string `yaml:"email"`
	Phone         string `yaml:"phone"`
	Notes         int    `yaml:"notes"`
}

// Markdown renders the record as an Obsidian-style note: YAML front matter,
// an H1 with the customer name, and a numbered list of notes.
func Markdown(c *models.Customer) (string, error) {
	fm, err := yaml.Marshal(frontMatter{
		AccountNumber: c.AccountNumber,
		Email:         c.Email,
		Phone:         c.Phone,
		Notes:         len(c.Notes),
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fm)
	sb.WriteString("---\n\n# ")
	sb.WriteString(c.Name)
	sb.WriteString("\n\n## Notes\n\n")
	if len(c.Notes) == 0 {
		sb.WriteString("_No notes_\n")
		return sb.String(), nil
	}
	for i, n := range c.Notes {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, n)
	}
	return sb.String(), nil
}
