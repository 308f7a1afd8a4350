// Tests in this file run the full crm CLI in-process against a temporary
// home. Output is captured via cobra's SetOut.
package rootcmd_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	rootcmd "github.com/go-ports/stratocrm/cmd/crm/root"
	"github.com/go-ports/stratocrm/internal/errs"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// runCmd executes the root command with args and returns captured stdout.
func runCmd(t testing.TB, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	root := rootcmd.New()
	root.SetOut(&buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	execErr := root.ExecuteContext(context.Background())

	return buf.String(), execErr
}

// extractAccount parses the account number from create output.
func extractAccount(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if v, ok := strings.CutPrefix(line, "Account Number: "); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func createCustomer(c *qt.C, home, name, email, phone string) string {
	out, err := runCmd(c.TB, "--home", home, "create", "--name", name, "--email", email, "--phone", phone)
	c.Assert(err, qt.IsNil)
	acct := extractAccount(out)
	c.Assert(acct, qt.Not(qt.Equals), "")
	return acct
}

// ---------------------------------------------------------------------------
// Help / version / init
// ---------------------------------------------------------------------------

func TestHelp(t *testing.T) {
	c := qt.New(t)

	out, err := runCmd(t, "--help")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "StratoCRM")
	for _, sub := range []string{"create", "lookup", "note", "email", "search", "mcp"} {
		c.Assert(out, qt.Contains, sub)
	}
}

func TestVersion(t *testing.T) {
	c := qt.New(t)

	out, err := runCmd(t, "--version")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "crm version")
	c.Assert(out, qt.Contains, "(commit ")
}

func TestInit(t *testing.T) {
	c := qt.New(t)

	home := t.TempDir()
	out, err := runCmd(t, "--home", home, "init")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "Customer store initialized at "+home)

	info, err := os.Stat(filepath.Join(home, "customers"))
	c.Assert(err, qt.IsNil)
	c.Assert(info.IsDir(), qt.IsTrue)
}

// ---------------------------------------------------------------------------
// create / lookup / note
// ---------------------------------------------------------------------------

func TestCreateLookupNote(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()

	out, err := runCmd(t, "--home", home, "create", "--name", "Ada Lovelace", "--email", "ada@example.com", "--phone", "555-0100")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "Customer created successfully!")
	c.Assert(extractAccount(out), qt.Equals, "000001")

	c.Run("lookup without notes", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "lookup", "000001")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Name: Ada Lovelace")
		c.Assert(out, qt.Contains, "No notes")
	})

	c.Run("note joins remaining args", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "note", "000001", "called", "about", "renewal")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Note added to 000001")

		_, err = runCmd(t, "--home", home, "note", "000001", "sent quote")
		c.Assert(err, qt.IsNil)

		out, err = runCmd(t, "--home", home, "lookup", "000001")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Notes: called about renewal, sent quote")
	})

	c.Run("lookup as json", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "lookup", "000001", "--format", "json")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, `"account_number": "000001"`)
	})

	c.Run("lookup as markdown", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "lookup", "000001", "--format", "markdown")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "# Ada Lovelace")
	})

	c.Run("unknown format", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "lookup", "000001", "--format", "xml")
		c.Assert(err, qt.ErrorMatches, `unknown format "xml".*`)
	})
}

func TestCreate_Validation(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()

	_, err := runCmd(t, "--home", home, "create", "--name", "Ada")
	c.Assert(err, qt.ErrorMatches, "required fields missing: email, phone")
	c.Assert(errs.ExitCode(err), qt.Equals, errs.ExitValidation)

	out, err := runCmd(t, "--home", home, "list")
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Contains, "No customers found.")
}

func TestLookup_NotFound(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()

	_, err := runCmd(t, "--home", home, "lookup", "000123")
	var nf *errs.NotFoundError
	c.Assert(errors.As(err, &nf), qt.IsTrue)
	c.Assert(errs.ExitCode(err), qt.Equals, errs.ExitNotFound)
}

func TestNote_Errors(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()
	acct := createCustomer(c, home, "Ada", "ada@example.com", "555")

	c.Run("missing text arg", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "note", acct)
		c.Assert(err, qt.IsNotNil)
	})

	c.Run("blank note", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "note", acct, "  ")
		var ve *errs.ValidationError
		c.Assert(errors.As(err, &ve), qt.IsTrue)
	})

	c.Run("unknown account", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "note", "000999", "hello")
		var nf *errs.NotFoundError
		c.Assert(errors.As(err, &nf), qt.IsTrue)
	})
}

// ---------------------------------------------------------------------------
// email
// ---------------------------------------------------------------------------

func TestEmail_Validation(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()

	c.Run("empty recipient", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "email", "--to", "", "--subject", "Hi", "--body", "x")
		var ve *errs.ValidationError
		c.Assert(errors.As(err, &ve), qt.IsTrue)
		c.Assert(err, qt.ErrorMatches, "recipient is required")
	})

	c.Run("body and body-file together", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "email", "--to", "a@b.c", "--subject", "Hi", "--body", "x", "--body-file", "f.txt")
		c.Assert(err, qt.ErrorMatches, ".*either --body or --body-file.*")
	})

	c.Run("missing body file", func(c *qt.C) {
		_, err := runCmd(t, "--home", home, "email", "--to", "a@b.c", "--subject", "Hi", "--body-file", filepath.Join(home, "nope.txt"))
		c.Assert(err, qt.ErrorMatches, "failed to read body file.*")
	})
}

// ---------------------------------------------------------------------------
// list / search / reindex
// ---------------------------------------------------------------------------

func TestListSearchReindex(t *testing.T) {
	c := qt.New(t)
	home := t.TempDir()
	ada := createCustomer(c, home, "Ada Lovelace", "ada@example.com", "555-0100")
	createCustomer(c, home, "Alan Turing", "alan@example.com", "555-0101")
	_, err := runCmd(t, "--home", home, "note", ada, "prefers", "email")
	c.Assert(err, qt.IsNil)

	c.Run("list", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "list")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Customers (2 of 2)")
		c.Assert(out, qt.Contains, "000001 | Ada Lovelace | ada@example.com | 555-0100 | 1 notes")
		c.Assert(out, qt.Contains, "000002 | Alan Turing")
	})

	c.Run("list with limit", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "list", "--limit", "1")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Customers (1 of 2)")
		c.Assert(strings.Contains(out, "Alan Turing"), qt.IsFalse)
	})

	c.Run("search", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "search", "prefers")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Results (1 found)")
		c.Assert(out, qt.Contains, "000001 Ada Lovelace")
	})

	c.Run("search without match", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "search", "babbage")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "No results found.")
	})

	c.Run("reindex after index loss", func(c *qt.C) {
		c.Assert(os.Remove(filepath.Join(home, "index.db")), qt.IsNil)
		_ = os.Remove(filepath.Join(home, "index.db-wal"))
		_ = os.Remove(filepath.Join(home, "index.db-shm"))

		out, err := runCmd(t, "--home", home, "reindex")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Indexing 2 customers...")
		c.Assert(out, qt.Contains, "Re-indexed 2 customers")

		out, err = runCmd(t, "--home", home, "search", "alan@")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "000002 Alan Turing")
	})

	c.Run("status", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "status")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Records:   2")
		c.Assert(out, qt.Contains, "Indexed:   2")
		c.Assert(strings.Contains(out, "Reindexed: never"), qt.IsFalse)
		c.Assert(strings.Contains(out, "out of date"), qt.IsFalse)
		c.Assert(out, qt.Contains, "Recently updated:")
	})
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func TestConfig(t *testing.T) {
	c := qt.New(t)
	t.Setenv("HOME", t.TempDir())
	home := t.TempDir()

	c.Run("show defaults", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "config")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "host: smtp.gmail.com")
		c.Assert(out, qt.Contains, "home_source: flag")
	})

	c.Run("init writes template once", func(c *qt.C) {
		out, err := runCmd(t, "--home", home, "config", "init")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Created "+filepath.Join(home, "config.yaml"))

		out, err = runCmd(t, "--home", home, "config", "init")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Use --force to overwrite.")
	})

	c.Run("show redacts password", func(c *qt.C) {
		cfg := "smtp:\n  host: mail.example.com\n  password: hunter2\n"
		c.Assert(os.WriteFile(filepath.Join(home, "config.yaml"), []byte(cfg), 0o600), qt.IsNil)

		out, err := runCmd(t, "--home", home, "config")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "host: mail.example.com")
		c.Assert(out, qt.Contains, "<redacted>")
		c.Assert(strings.Contains(out, "hunter2"), qt.IsFalse)
	})

	c.Run("set-home and clear-home", func(c *qt.C) {
		target := filepath.Join(t.TempDir(), "crm")

		out, err := runCmd(t, "config", "set-home", target)
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Persisted CRM home: "+target)
		_, err = os.Stat(filepath.Join(target, "customers"))
		c.Assert(err, qt.IsNil)

		out, err = runCmd(t, "config", "clear-home")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "Cleared persisted CRM home setting.")

		out, err = runCmd(t, "config", "clear-home")
		c.Assert(err, qt.IsNil)
		c.Assert(out, qt.Contains, "No persisted CRM home setting was found.")
	})
}
