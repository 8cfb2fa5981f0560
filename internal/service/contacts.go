// internal/service/contacts.go
package service

import (
	"strings"

	"github.com/scoutpost/outreach-backend/internal/model"
)

// ExtractContacts turns the raw pipeline output into the campaign's
// contact list: blank entries dropped, exact duplicates dropped
// (case-sensitive, first occurrence wins), company derived from the
// email domain. An address with no @-domain is kept with company
// "Unknown".
func ExtractContacts(emails []string) []model.Contact {
	contacts := []model.Contact{}
	seen := make(map[string]struct{}, len(emails))

	for _, email := range emails {
		if strings.TrimSpace(email) == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		contacts = append(contacts, model.Contact{
			Email:   email,
			Company: CompanyFromEmail(email),
		})
	}
	return contacts
}

// CompanyFromEmail derives a company label from the address domain:
// first dot-separated label, first letter upper-cased. "jane@shopify.com"
// gives "Shopify", "b@y.co.uk" gives "Y".
func CompanyFromEmail(email string) string {
	_, domain, found := strings.Cut(email, "@")
	if !found || domain == "" {
		return "Unknown"
	}
	label := strings.Split(domain, ".")[0]
	if label == "" {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
