package validation

import "github.com/username/cargodocs/backend/src/models"

// Catalog is the process-wide, read-only set of cross-document rules. It is
// built once at startup from literal data and injected into the engine, so
// tests can run synthetic catalogs against the same machinery.
type Catalog struct {
	DateRules     []DateRule
	AnchoredRules []AnchoredEqualityRule
	GroupRules    []GroupEqualityRule
	// GlobalChecks run after product reconciliation: older agreement checks
	// over pooled fields that predate the grouped catalog.
	GlobalChecks []GroupEqualityRule
}

// DefaultCatalog returns the production rule set for trade document batches.
func DefaultCatalog() *Catalog {
	return &Catalog{
		DateRules: []DateRule{
			{
				RuleID: "date_contract_earliest",
				Anchor: FieldRef{DocType: "CONTRACT", FieldKey: "contract_date", Label: "Contract date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrBefore, Other: FieldRef{DocType: "PROFORMA", FieldKey: "proforma_date", Label: "Proforma date"}},
					{Op: OpOnOrBefore, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
				},
				Severity: models.SeverityError,
			},
			{
				RuleID: "date_proforma_earliest",
				Anchor: FieldRef{DocType: "PROFORMA", FieldKey: "proforma_date", Label: "Proforma date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrBefore, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
					{Op: OpOnOrBefore, Other: FieldRef{DocType: "BILL_OF_LADING", FieldKey: "bl_date", Label: "B/L date"}},
				},
				Severity: models.SeverityError,
			},
			{
				RuleID: "date_invoice_before_shipment",
				Anchor: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrBefore, Other: FieldRef{DocType: "BILL_OF_LADING", FieldKey: "bl_date", Label: "B/L date"},
						Note: "goods cannot ship before they are invoiced"},
				},
				Severity: models.SeverityError,
			},
			{
				RuleID: "date_veterinary_after_shipment",
				Anchor: FieldRef{DocType: "VETERINARY_CERTIFICATE", FieldKey: "cert_date", Label: "Veterinary certificate date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrAfter, Other: FieldRef{DocType: "BILL_OF_LADING", FieldKey: "bl_date", Label: "B/L date"}},
				},
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "date_quality_after_invoice",
				Anchor: FieldRef{DocType: "QUALITY_CERTIFICATE", FieldKey: "cert_date", Label: "Quality certificate date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrAfter, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
				},
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "date_export_declaration",
				Anchor: FieldRef{DocType: "EXPORT_DECLARATION", FieldKey: "declaration_date", Label: "Export declaration date"},
				Comparisons: []DateComparison{
					{Op: OpOnOrAfter, Other: FieldRef{DocType: "INVOICE", FieldKey: "invoice_date", Label: "Invoice date"}},
				},
				Severity: models.SeverityWarn,
			},
		},
		AnchoredRules: []AnchoredEqualityRule{
			{
				RuleID: "contract_number",
				Anchor: FieldRef{DocType: "INVOICE", FieldKey: "contract_number", Label: "Contract number"},
				Targets: []FieldRef{
					{DocType: "CONTRACT", FieldKey: "contract_number", Label: "Contract number"},
					{DocType: "PROFORMA", FieldKey: "contract_number", Label: "Contract number"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityError,
			},
			{
				RuleID: "net_weight",
				Anchor: FieldRef{DocType: "PACKING_LIST", FieldKey: "net_weight", Label: "Net weight"},
				Targets: []FieldRef{
					{DocType: "INVOICE", FieldKey: "net_weight", Label: "Net weight"},
					{DocType: "BILL_OF_LADING", FieldKey: "net_weight", Label: "Net weight"},
					{DocType: "EXPORT_DECLARATION", FieldKey: "net_weight", Label: "Net weight"},
				},
				Kind:     KindNumber,
				Severity: models.SeverityError,
			},
			{
				// Disputed in the source rule sets; kept at WARN until the
				// catalog owner confirms it should fail batches.
				RuleID: "gross_weight",
				Anchor: FieldRef{DocType: "PACKING_LIST", FieldKey: "gross_weight", Label: "Gross weight"},
				Targets: []FieldRef{
					{DocType: "BILL_OF_LADING", FieldKey: "gross_weight", Label: "Gross weight"},
					{DocType: "EXPORT_DECLARATION", FieldKey: "gross_weight", Label: "Gross weight"},
				},
				Kind:     KindNumber,
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "total_amount",
				Anchor: FieldRef{DocType: "INVOICE", FieldKey: "total_amount", Label: "Total amount"},
				Targets: []FieldRef{
					{DocType: "PROFORMA", FieldKey: "total_amount", Label: "Total amount"},
				},
				Kind:     KindNumber,
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "incoterms",
				Anchor: FieldRef{DocType: "INVOICE", FieldKey: "terms_of_delivery", Label: "Terms of delivery"},
				Targets: []FieldRef{
					{DocType: "PROFORMA", FieldKey: "terms_of_delivery", Label: "Terms of delivery"},
					{DocType: "CONTRACT", FieldKey: "terms_of_delivery", Label: "Terms of delivery"},
				},
				Kind:     KindStringUpper,
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "consignee",
				Anchor: FieldRef{DocType: "BILL_OF_LADING", FieldKey: "consignee", Label: "Consignee"},
				Targets: []FieldRef{
					{DocType: "INVOICE", FieldKey: "consignee", Label: "Consignee"},
					{DocType: "PACKING_LIST", FieldKey: "consignee", Label: "Consignee"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityWarn,
			},
		},
		GroupRules: []GroupEqualityRule{
			{
				RuleID: "container_number",
				Refs: []FieldRef{
					{DocType: "INVOICE", FieldKey: "container_number", Label: "Container number"},
					{DocType: "PACKING_LIST", FieldKey: "container_number", Label: "Container number"},
					{DocType: "BILL_OF_LADING", FieldKey: "container_number", Label: "Container number"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityError,
			},
			{
				RuleID: "vessel_name",
				Refs: []FieldRef{
					{DocType: "BILL_OF_LADING", FieldKey: "vessel_name", Label: "Vessel name"},
					{DocType: "VETERINARY_CERTIFICATE", FieldKey: "vessel_name", Label: "Vessel name"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityWarn,
			},
			{
				RuleID: "country_of_origin",
				Refs: []FieldRef{
					{DocType: "INVOICE", FieldKey: "country_of_origin", Label: "Country of origin"},
					{DocType: "CERTIFICATE_OF_ORIGIN", FieldKey: "country_of_origin", Label: "Country of origin"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityWarn,
			},
		},
		GlobalChecks: []GroupEqualityRule{
			{
				RuleID: "invoice_number_agreement",
				Refs: []FieldRef{
					{DocType: "INVOICE", FieldKey: "invoice_number", Label: "Invoice number"},
					{DocType: "PACKING_LIST", FieldKey: "invoice_number", Label: "Invoice number"},
					{DocType: "VETERINARY_CERTIFICATE", FieldKey: "invoice_number", Label: "Invoice number"},
					{DocType: "QUALITY_CERTIFICATE", FieldKey: "invoice_number", Label: "Invoice number"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityError,
			},
			{
				RuleID: "currency_agreement",
				Refs: []FieldRef{
					{DocType: "INVOICE", FieldKey: "currency", Label: "Currency"},
					{DocType: "PROFORMA", FieldKey: "currency", Label: "Currency"},
					{DocType: "EXPORT_DECLARATION", FieldKey: "currency", Label: "Currency"},
				},
				Kind:     KindStringUpper,
				Severity: models.SeverityError,
			},
			{
				RuleID: "destination_port_agreement",
				Refs: []FieldRef{
					{DocType: "BILL_OF_LADING", FieldKey: "port_of_discharge", Label: "Destination port"},
					{DocType: "INVOICE", FieldKey: "destination_port", Label: "Destination port"},
					{DocType: "PACKING_LIST", FieldKey: "destination_port", Label: "Destination port"},
				},
				Kind:     KindStringFold,
				Severity: models.SeverityWarn,
			},
		},
	}
}
