package schema

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/docparse/internal/extract"
)

// LineItem is a normalized billed row.
type LineItem struct {
	Code        *string `json:"code"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Record is a schema-conformant extraction result. It holds exactly the
// schema's fields and is not modified after Normalize returns.
type Record struct {
	Template string
	Schema   string
	order    []string
	fields   map[string]any
}

// Get returns the value of a schema field, or nil.
func (r Record) Get(name string) any { return r.fields[name] }

// Keys lists the record's fields in schema order.
func (r Record) Keys() []string { return append([]string(nil), r.order...) }

// Fields returns a copy of the field map.
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// LineItems returns the normalized items; never nil for invoice records.
func (r Record) LineItems() []LineItem {
	items, _ := r.fields["line_items"].([]LineItem)
	return items
}

// FieldsExtracted counts fields holding a value; an empty item list does
// not count.
func (r Record) FieldsExtracted() int {
	n := 0
	for _, v := range r.fields {
		switch x := v.(type) {
		case nil:
		case []LineItem:
			if len(x) > 0 {
				n++
			}
		default:
			n++
		}
	}
	return n
}

// MarshalJSON writes {"template": ..., <fields in schema order>}.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"template":`)
	t, err := json.Marshal(r.Template)
	if err != nil {
		return nil, err
	}
	buf.Write(t)
	for _, k := range r.order {
		buf.WriteByte(',')
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Auditor is told about every field value the normalizer changed.
type Auditor interface {
	FieldNormalized(field string, from, to any)
}

// Normalize maps a raw field map onto s. Unknown keys are dropped, absent
// fields become nil and values are coerced by field kind; values that fail
// coercion become nil. It never fails.
func Normalize(raw map[string]any, s Schema, template string) Record {
	return NormalizeAudited(raw, s, template, nil)
}

// NormalizeAudited is Normalize reporting changed values to audit, which may
// be nil.
func NormalizeAudited(raw map[string]any, s Schema, template string, audit Auditor) Record {
	r := Record{
		Template: template,
		Schema:   s.Name,
		order:    s.FieldNames(),
		fields:   make(map[string]any, len(s.Fields)),
	}
	for _, f := range s.Fields {
		in := raw[f.Name]
		out := coerce(f.Kind, in)
		r.fields[f.Name] = out
		if audit != nil && in != nil && f.Kind != KindLineItems && !sameValue(in, out) {
			audit.FieldNormalized(f.Name, in, out)
		}
	}
	return r
}

func sameValue(a, b any) bool {
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && as == bs
}

func coerce(k Kind, v any) any {
	switch k {
	case KindDate:
		return Date(v)
	case KindMoney:
		return Money(v)
	case KindInteger:
		return Integer(v)
	case KindPhone:
		return Phone(v)
	case KindAddress:
		return Address(v)
	case KindLineItems:
		return Items(v)
	default:
		return String(v)
	}
}

// Items normalizes raw line items. Rows without a description or a valid
// amount are dropped. The result is never nil.
func Items(v any) []LineItem {
	out := []LineItem{}
	add := func(code, desc string, amount any) {
		desc = strings.TrimSpace(desc)
		amt, ok := Money(amount).(float64)
		if desc == "" || !ok {
			return
		}
		it := LineItem{Description: desc, Amount: amt}
		if c := strings.TrimSpace(code); c != "" {
			it.Code = &c
		}
		out = append(out, it)
	}
	switch x := v.(type) {
	case []extract.LineItem:
		for _, it := range x {
			add(it.Code, it.Description, it.Amount)
		}
	case []LineItem:
		for _, it := range x {
			code := ""
			if it.Code != nil {
				code = *it.Code
			}
			add(code, it.Description, it.Amount)
		}
	case []any:
		for _, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			code, _ := m["code"].(string)
			desc, _ := m["description"].(string)
			add(code, desc, m["amount"])
		}
	}
	return out
}
