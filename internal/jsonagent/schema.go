package jsonagent

// FieldType names the JSON value kinds the validator checks against.
type FieldType int

const (
	TypeString FieldType = iota
	TypeNumber
	TypeObject
	TypeArray
	TypeStringOrNumber
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeStringOrNumber:
		return "string or number"
	default:
		return "unknown"
	}
}

// FieldRule binds one payload field to its expected type. Rules are held
// in slices so anomalies surface in a stable order.
type FieldRule struct {
	Name string
	Type FieldType
}

// NestedRule requires sub-fields inside a nested object, or inside every
// element of an array when the path ends in "[*]". Only one level of array
// nesting is supported.
type NestedRule struct {
	Path     string
	Required []string
}

// Schema is the per-event-type payload contract.
type Schema struct {
	Required []string
	Types    []FieldRule
	Nested   []NestedRule
}

// eventTypeOrder keeps diagnostics deterministic.
var eventTypeOrder = []string{"rfq", "invoice", "complaint", "fraud_alert"}

func defaultSchemas() map[string]Schema {
	return map[string]Schema{
		"rfq": {
			Required: []string{"rfq_id", "customer", "items", "date_requested", "priority"},
			Types: []FieldRule{
				{"rfq_id", TypeString},
				{"customer", TypeObject},
				{"items", TypeArray},
				{"date_requested", TypeString},
				{"priority", TypeString},
			},
			Nested: []NestedRule{
				{Path: "customer", Required: []string{"id", "name", "contact_email"}},
				{Path: "items[*]", Required: []string{"item_id", "quantity", "description"}},
			},
		},
		"invoice": {
			Required: []string{"invoice_id", "customer_id", "amount", "date_issued", "items"},
			Types: []FieldRule{
				{"invoice_id", TypeString},
				{"customer_id", TypeString},
				{"amount", TypeNumber},
				{"date_issued", TypeString},
				{"items", TypeArray},
			},
			Nested: []NestedRule{
				{Path: "items[*]", Required: []string{"item_id", "quantity", "price", "description"}},
			},
		},
		"complaint": {
			Required: []string{"complaint_id", "customer_id", "description", "severity", "date_filed"},
			Types: []FieldRule{
				{"complaint_id", TypeString},
				{"customer_id", TypeString},
				{"description", TypeString},
				{"severity", TypeString},
				{"date_filed", TypeString},
			},
		},
		"fraud_alert": {
			Required: []string{"alert_id", "account_id", "type", "risk_score", "timestamp"},
			Types: []FieldRule{
				{"alert_id", TypeString},
				{"account_id", TypeString},
				{"type", TypeString},
				{"risk_score", TypeNumber},
				{"timestamp", TypeString},
			},
		},
	}
}
