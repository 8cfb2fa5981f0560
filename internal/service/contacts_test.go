package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoutpost/outreach-backend/internal/model"
)

func TestExtractContacts(t *testing.T) {
	input := []string{"a@x.com", "a@x.com", "", "b@y.co.uk", "bad-address"}

	contacts := ExtractContacts(input)

	// Empty entries dropped, duplicates dropped, a malformed address is
	// kept and labelled Unknown. First-occurrence order preserved.
	assert.Equal(t, []model.Contact{
		{Email: "a@x.com", Company: "X"},
		{Email: "b@y.co.uk", Company: "Y"},
		{Email: "bad-address", Company: "Unknown"},
	}, contacts)
}

func TestExtractContactsDedupIsCaseSensitive(t *testing.T) {
	contacts := ExtractContacts([]string{"A@x.com", "a@x.com"})
	assert.Len(t, contacts, 2)
}

func TestExtractContactsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractContacts(nil))
	assert.Empty(t, ExtractContacts([]string{"", "   "}))
}

func TestCompanyFromEmail(t *testing.T) {
	cases := []struct {
		email   string
		company string
	}{
		{"jane@shopify.com", "Shopify"},
		{"b@y.co.uk", "Y"},
		{"bad-address", "Unknown"},
		{"trailing@", "Unknown"},
		{"dot@.com", "Unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.company, CompanyFromEmail(tc.email), "email %q", tc.email)
	}
}
