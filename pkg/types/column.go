package types

import "strings"

// Column is a validated, normalized column record. It is produced only by a
// successful column-definition analysis pass and is not mutated afterwards.
type Column struct {
	Name     string        `json:"name"`
	Type     ScalarType    `json:"type"`
	IsKey    bool          `json:"is_key"`
	Agg      AggregateType `json:"agg,omitempty"`
	Nullable bool          `json:"nullable"`
	Default  DefaultValue  `json:"default"`
	Comment  string        `json:"comment,omitempty"`
}

// ToSQL renders the canonical column clause. The output is byte-stable for a
// given column; the trailing spaces between clauses are part of the format
// and must not change, since the text feeds schema-reflection output.
func (c *Column) ToSQL() string {
	var sb strings.Builder
	sb.WriteString("`")
	sb.WriteString(c.Name)
	sb.WriteString("` ")
	sb.WriteString(c.Type.ToSQL())
	sb.WriteString(" ")

	if c.Agg != AggNone {
		sb.WriteString(c.Agg.String())
		sb.WriteString(" ")
	}

	if !c.Nullable {
		sb.WriteString("NOT NULL ")
	} else {
		sb.WriteString("NULL ")
	}

	if c.Default.IsSet() {
		// A null payload renders as the text "null"; the set flag alone
		// marks the clause as present.
		payload, ok := c.Default.Value()
		if !ok {
			payload = "null"
		}
		sb.WriteString("DEFAULT \"")
		sb.WriteString(payload)
		sb.WriteString("\" ")
	}
	sb.WriteString("COMMENT \"")
	sb.WriteString(c.Comment)
	sb.WriteString("\"")

	return sb.String()
}

// String returns the canonical clause text.
func (c *Column) String() string {
	return c.ToSQL()
}

// DefaultPayload returns the resolved default payload for persistence, or
// false if no payload is stored (unset or explicit null).
func (c *Column) DefaultPayload() (string, bool) {
	return c.Default.Value()
}
