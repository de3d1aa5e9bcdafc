// Package theme defines the fixed legal-topic taxonomy used to group and
// relate legal cases.  The taxonomy is static configuration, not derived from
// data; deployments may extend it but the built-in set below is the shipped
// default.
package theme

import "strings"

// PrecedentValue grades how much weight a theme's case law carries.
type PrecedentValue string

const (
	PrecedentLow    PrecedentValue = "low"
	PrecedentMedium PrecedentValue = "medium"
	PrecedentHigh   PrecedentValue = "high"
)

// Theme is one taxonomy entry.  A legal case is assigned to the theme when
// any keyword appears as a case-insensitive substring of the case's
// searchable text; a case may belong to several themes at once.
type Theme struct {
	ID                      string
	Name                    string
	Keywords                []string
	PrecedentValue          PrecedentValue
	ApplicableJurisdictions []string
}

// Matches reports whether searchable (already lower-cased) contains any of
// the theme's keywords.
func (t Theme) Matches(searchable string) bool {
	for _, kw := range t.Keywords {
		if strings.Contains(searchable, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultTaxonomy returns the shipped seven-theme taxonomy.  Callers receive
// a fresh copy and may append to it without affecting other callers.
func DefaultTaxonomy() []Theme {
	return []Theme{
		{
			ID:             "product_liability",
			Name:           "Product Liability",
			Keywords:       []string{"product liability", "defective device", "failure to warn", "design defect", "manufacturing defect"},
			PrecedentValue: PrecedentHigh,
			ApplicableJurisdictions: []string{"US", "EU", "UK"},
		},
		{
			ID:             "regulatory_compliance",
			Name:           "Regulatory Compliance Breach",
			Keywords:       []string{"regulatory compliance", "fda violation", "warning letter", "consent decree", "mdr breach", "non-compliance"},
			PrecedentValue: PrecedentHigh,
			ApplicableJurisdictions: []string{"US", "EU", "UK", "JP", "CN"},
		},
		{
			ID:             "clinical_trial_ethics",
			Name:           "Clinical Trial & Ethics",
			Keywords:       []string{"clinical trial", "informed consent", "ethics committee", "irb", "study misconduct"},
			PrecedentValue: PrecedentMedium,
			ApplicableJurisdictions: []string{"US", "EU", "UK", "JP"},
		},
		{
			ID:             "patent_ip",
			Name:           "Patent & Intellectual Property",
			Keywords:       []string{"patent infringement", "intellectual property", "trade secret", "patent invalidity"},
			PrecedentValue: PrecedentMedium,
			ApplicableJurisdictions: []string{"US", "EU", "UK", "CN"},
		},
		{
			ID:             "market_access",
			Name:           "Market Access & Reimbursement",
			Keywords:       []string{"market access", "reimbursement", "pricing dispute", "procurement", "tender"},
			PrecedentValue: PrecedentLow,
			ApplicableJurisdictions: []string{"EU", "UK", "JP"},
		},
		{
			ID:             "data_privacy",
			Name:           "Data Privacy & Security",
			Keywords:       []string{"data privacy", "gdpr", "hipaa", "data breach", "patient data"},
			PrecedentValue: PrecedentMedium,
			ApplicableJurisdictions: []string{"US", "EU", "UK"},
		},
		{
			ID:             "ai_ml_devices",
			Name:           "AI/ML-Enabled Devices",
			Keywords:       []string{"artificial intelligence", "machine learning", "algorithm change", "adaptive software", "samd"},
			PrecedentValue: PrecedentMedium,
			ApplicableJurisdictions: []string{"US", "EU", "UK", "JP", "CN"},
		},
	}
}

// ByID indexes a taxonomy slice by theme ID.
func ByID(taxonomy []Theme) map[string]Theme {
	out := make(map[string]Theme, len(taxonomy))
	for _, t := range taxonomy {
		out[t.ID] = t
	}
	return out
}
