// Package silver implements the cleaning stage: raw bronze extracts are
// normalized into canonical silver tables (typed dates and numbers, trimmed
// identity text, no duplicates, no rows without their entity's identifier).
package silver

import (
	"path"
	"strings"
)

// EntityKind identifies the schema rules applied to an extract.
type EntityKind int

const (
	// KindGeneric applies the column-driven rules only; identifier columns
	// present in the extract are still treated as required.
	KindGeneric EntityKind = iota
	// KindClients requires id_client on every row.
	KindClients
	// KindPurchases requires both id_achat and id_client on every row.
	KindPurchases
)

func (k EntityKind) String() string {
	switch k {
	case KindClients:
		return "clients"
	case KindPurchases:
		return "purchases"
	default:
		return "generic"
	}
}

// RequiredIDs returns the identifier columns a row must carry for this kind.
func (k EntityKind) RequiredIDs() []string {
	switch k {
	case KindClients:
		return []string{"id_client"}
	case KindPurchases:
		return []string{"id_achat", "id_client"}
	default:
		return []string{"id_achat", "id_client"}
	}
}

// KindForObject infers the entity kind from a storage object name.
func KindForObject(objectName string) EntityKind {
	base := strings.ToLower(objectName)
	base = strings.TrimSuffix(base, path.Ext(base))

	switch {
	case strings.HasPrefix(base, "clients"):
		return KindClients
	case strings.HasPrefix(base, "achats"):
		return KindPurchases
	default:
		return KindGeneric
	}
}

var numericColumns = map[string]bool{
	"montant":   true,
	"id_achat":  true,
	"id_client": true,
}

var textKeywords = []string{"email", "nom", "produit", "pays"}

func isDateColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}

func isNumericColumn(name string) bool {
	return numericColumns[strings.ToLower(name)]
}

func isTextColumn(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range textKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isEmailColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "email")
}
