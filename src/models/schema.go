package models

// FieldSpec describes one extractable field of a document type.
type FieldSpec struct {
	Required bool
	Label    string
}

// ProductSubFields are the per-row sub-fields of the repeated "products"
// block. In the ledger they appear flattened as products.<row-id>.<sub-field>;
// in the schema they appear once as products.<sub-field> template keys.
var ProductSubFields = []string{
	"name_product",
	"latin_name",
	"size_product",
	"net_weight",
	"gross_weight",
	"unit_box",
	"packages",
	"price_per_unit",
	"total_price",
	"commodity_code",
}

// docSchemas lists every known scalar field per document type. Built once at
// startup, never mutated.
var docSchemas = map[DocType]map[string]FieldSpec{
	DocTypeContract: {
		"contract_number":   {Required: true, Label: "Contract number"},
		"contract_date":     {Required: true, Label: "Contract date"},
		"seller":            {Required: false, Label: "Seller"},
		"buyer":             {Required: false, Label: "Buyer"},
		"terms_of_delivery": {Required: false, Label: "Terms of delivery"},
	},
	DocTypeProforma: {
		"proforma_number":   {Required: true, Label: "Proforma number"},
		"proforma_date":     {Required: true, Label: "Proforma date"},
		"contract_number":   {Required: false, Label: "Contract number"},
		"total_amount":      {Required: true, Label: "Total amount"},
		"currency":          {Required: true, Label: "Currency"},
		"terms_of_delivery": {Required: false, Label: "Terms of delivery"},
	},
	DocTypeInvoice: {
		"invoice_number":    {Required: true, Label: "Invoice number"},
		"invoice_date":      {Required: true, Label: "Invoice date"},
		"contract_number":   {Required: true, Label: "Contract number"},
		"total_amount":      {Required: true, Label: "Total amount"},
		"currency":          {Required: true, Label: "Currency"},
		"net_weight":        {Required: false, Label: "Net weight"},
		"consignee":         {Required: false, Label: "Consignee"},
		"container_number":  {Required: false, Label: "Container number"},
		"country_of_origin": {Required: false, Label: "Country of origin"},
		"destination_port":  {Required: false, Label: "Destination port"},
		"terms_of_delivery": {Required: false, Label: "Terms of delivery"},
	},
	DocTypePackingList: {
		"invoice_number":   {Required: true, Label: "Invoice number"},
		"net_weight":       {Required: true, Label: "Net weight"},
		"gross_weight":     {Required: true, Label: "Gross weight"},
		"consignee":        {Required: false, Label: "Consignee"},
		"container_number": {Required: false, Label: "Container number"},
		"destination_port": {Required: false, Label: "Destination port"},
	},
	DocTypeBillOfLading: {
		"bl_number":         {Required: true, Label: "B/L number"},
		"bl_date":           {Required: true, Label: "B/L date"},
		"consignee":         {Required: true, Label: "Consignee"},
		"vessel_name":       {Required: false, Label: "Vessel name"},
		"container_number":  {Required: false, Label: "Container number"},
		"net_weight":        {Required: false, Label: "Net weight"},
		"gross_weight":      {Required: false, Label: "Gross weight"},
		"port_of_loading":   {Required: false, Label: "Port of loading"},
		"port_of_discharge": {Required: false, Label: "Port of discharge"},
	},
	DocTypeCertificateOfOrigin: {
		"certificate_number": {Required: true, Label: "Certificate number"},
		"cert_date":          {Required: false, Label: "Certificate date"},
		"country_of_origin":  {Required: true, Label: "Country of origin"},
	},
	DocTypeVeterinaryCertificate: {
		"certificate_number": {Required: true, Label: "Certificate number"},
		"cert_date":          {Required: true, Label: "Certificate date"},
		"invoice_number":     {Required: false, Label: "Invoice number"},
		"vessel_name":        {Required: false, Label: "Vessel name"},
	},
	DocTypeQualityCertificate: {
		"certificate_number": {Required: true, Label: "Certificate number"},
		"cert_date":          {Required: false, Label: "Certificate date"},
		"invoice_number":     {Required: false, Label: "Invoice number"},
	},
	DocTypeExportDeclaration: {
		"declaration_number": {Required: true, Label: "Declaration number"},
		"declaration_date":   {Required: true, Label: "Declaration date"},
		"net_weight":         {Required: false, Label: "Net weight"},
		"gross_weight":       {Required: false, Label: "Gross weight"},
		"currency":           {Required: false, Label: "Currency"},
	},
}

// productBearingTypes are the document types whose schema includes the
// repeated products block.
var productBearingTypes = map[DocType]bool{
	DocTypeProforma:              true,
	DocTypeInvoice:               true,
	DocTypePackingList:           true,
	DocTypeVeterinaryCertificate: true,
}

// GetSchema returns the field schema for a document type, with the product
// template expanded to dotted keys. Unknown types get an empty schema.
func GetSchema(docType DocType) map[string]FieldSpec {
	base, ok := docSchemas[docType]
	if !ok {
		return map[string]FieldSpec{}
	}
	schema := make(map[string]FieldSpec, len(base)+len(ProductSubFields))
	for key, spec := range base {
		schema[key] = spec
	}
	if productBearingTypes[docType] {
		for _, sub := range ProductSubFields {
			schema["products."+sub] = FieldSpec{Required: false, Label: "Product " + sub}
		}
	}
	return schema
}

// FieldLabel returns the human label for a field key, falling back to the key
// itself for keys outside the schema (e.g. flattened product rows).
func FieldLabel(docType DocType, fieldKey string) string {
	if spec, ok := docSchemas[docType][fieldKey]; ok && spec.Label != "" {
		return spec.Label
	}
	return fieldKey
}
