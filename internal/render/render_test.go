package render_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"gopkg.in/yaml.v3"

	"github.com/go-ports/stratocrm/internal/models"
	"github.com/go-ports/stratocrm/internal/render"
)

func alice(notes ...string) *models.Customer {
	c := models.NewCustomer("000001", "Alice", "a@x.com", "555-0100")
	for _, n := range notes {
		c.AppendNote(n)
	}
	return c
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

func TestText_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		cust *models.Customer
		want string
	}{
		{
			name: "no notes",
			cust: alice(),
			want: "Account Number: 000001\nName: Alice\nEmail: a@x.com\nPhone: 555-0100\nNotes: No notes",
		},
		{
			name: "notes joined in order",
			cust: alice("Called back", "Sent quote"),
			want: "Account Number: 000001\nName: Alice\nEmail: a@x.com\nPhone: 555-0100\nNotes: Called back, Sent quote",
		},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(render.Text(tc.cust), qt.Equals, tc.want)
		})
	}
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

func TestMarkdown_HappyPath(t *testing.T) {
	c := qt.New(t)

	c.Run("front matter parses back", func(c *qt.C) {
		out, err := render.Markdown(alice("one", "two"))
		c.Assert(err, qt.IsNil)

		parts := strings.SplitN(out, "---\n", 3)
		c.Assert(parts, qt.HasLen, 3)
		var fm map[string]any
		c.Assert(yaml.Unmarshal([]byte(parts[1]), &fm), qt.IsNil)
		c.Assert(fm["account_number"], qt.Equals, "000001")
		c.Assert(fm["notes"], qt.Equals, 2)

		c.Assert(parts[2], qt.Contains, "# Alice\n")
		c.Assert(parts[2], qt.Contains, "1. one\n2. two\n")
	})

	c.Run("empty notes placeholder", func(c *qt.C) {
		out, err := render.Markdown(alice())
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "_No notes_")
	})
}

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

func TestRender_Formats(t *testing.T) {
	c := qt.New(t)

	c.Run("default is text", func(c *qt.C) {
		out, err := render.Render(alice(), "")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Equals, render.Text(alice()))
	})

	c.Run("json keeps storage keys", func(c *qt.C) {
		out, err := render.Render(&models.Customer{AccountNumber: "000002", Name: "Bob"}, render.FormatJSON)
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, `"account_number": "000002"`)
		c.Assert(out, qt.Contains, `"notes": []`)
	})

	c.Run("unknown format fails", func(c *qt.C) {
		_, err := render.Render(alice(), "xml")
		c.Assert(err, qt.ErrorMatches, `unknown format "xml".*`)
	})
}
