package kwess

import (
	"errors"
	"testing"
)

func TestNormalizeStateFilter(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Open", "Open"},
		{"open", "Open"},
		{"o", "Open"},
		{"OPEN", "Open"},
		{"Closed", "Closed"},
		{"closed", "Closed"},
		{"c", "Closed"},
		{"All", "All"},
		{"all", "All"},
		{"", "All"},
		{"anything else", "All"},
	}
	for _, tc := range cases {
		if got := normalizeStateFilter(tc.in); got != tc.want {
			t.Errorf("normalizeStateFilter(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFindAccountNumber(t *testing.T) {
	c := &Client{accounts: []Account{
		{Type: "Margin", Number: "111"},
		{Type: "TFSA", Number: "222"},
		{Type: "RRSP", Number: "333"},
	}}

	cases := []struct {
		accountType string
		want        string
	}{
		{"TFSA", "222"},
		{"tfsa", "222"},
		{"TfSa", "222"},
		{"Margin", "111"},
		{"rrsp", "333"},
	}
	for _, tc := range cases {
		got, err := c.FindAccountNumber(tc.accountType)
		if err != nil {
			t.Errorf("FindAccountNumber(%q): %v", tc.accountType, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FindAccountNumber(%q) = %q, want %q", tc.accountType, got, tc.want)
		}
	}

	_, err := c.FindAccountNumber("FHSA")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("FindAccountNumber(FHSA) error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountsReturnsCopy(t *testing.T) {
	c := &Client{accounts: []Account{{Type: "TFSA", Number: "222"}}}

	got := c.Accounts()
	got[0].Number = "mutated"

	if c.accounts[0].Number != "222" {
		t.Error("mutating the returned slice changed the cache")
	}
}
