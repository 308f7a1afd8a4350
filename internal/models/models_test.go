package models_test

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/stratocrm/internal/models"
)

func TestNewCustomer_HappyPath(t *testing.T) {
	c := qt.New(t)

	cust := models.NewCustomer("000001", "Alice", "a@x.com", "555-0100")
	c.Assert(cust.AccountNumber, qt.Equals, "000001")
	c.Assert(cust.Notes, qt.IsNotNil)
	c.Assert(cust.Notes, qt.HasLen, 0)

	c.Run("empty notes encode as an array", func(c *qt.C) {
		b, err := json.Marshal(cust)
		c.Assert(err, qt.IsNil)
		c.Assert(string(b), qt.Equals,
			`{"account_number":"000001","name":"Alice","email":"a@x.com","phone":"555-0100","notes":[]}`)
	})
}

func TestAppendNote_PreservesOrder(t *testing.T) {
	c := qt.New(t)

	cust := models.NewCustomer("000001", "Alice", "a@x.com", "555-0100")
	cust.AppendNote("first")
	cust.AppendNote("second")
	cust.AppendNote("third")
	c.Assert(cust.Notes, qt.DeepEquals, []string{"first", "second", "third"})
}

func TestBlank(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"x", false},
		{"  x  ", false},
	}
	for _, tc := range cases {
		c.Assert(models.Blank(tc.in), qt.Equals, tc.want, qt.Commentf("input %q", tc.in))
	}
}
