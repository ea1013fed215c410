package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"
)

// KeyType describes the table's key model.
type KeyType string

const (
	KeyDuplicate KeyType = "DUPLICATE"
	KeyAggregate KeyType = "AGGREGATE"
	KeyUnique    KeyType = "UNIQUE"
)

// Table is a validated table schema: the output of DDL analysis and the unit
// stored in the catalog.
type Table struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Engine    string    `json:"engine"`
	KeyType   KeyType   `json:"key_type"`
	Columns   []Column  `json:"columns"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSQL renders the canonical CREATE TABLE statement for the table. The text
// is the schema-reflection ("SHOW CREATE TABLE") representation and must be
// byte-stable for a given table.
func (t *Table) ToSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE `")
	sb.WriteString(t.Name)
	sb.WriteString("` (\n")
	for i := range t.Columns {
		sb.WriteString("  ")
		sb.WriteString(t.Columns[i].ToSQL())
		if i < len(t.Columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")

	if t.Engine != "" {
		sb.WriteString(fmt.Sprintf(" ENGINE = %s", t.Engine))
	}

	if t.KeyType != "" {
		var keys []string
		for i := range t.Columns {
			if t.Columns[i].IsKey {
				keys = append(keys, "`"+t.Columns[i].Name+"`")
			}
		}
		sb.WriteString(fmt.Sprintf(" %s KEY (%s)", t.KeyType, strings.Join(keys, ", ")))
	}

	if t.Comment != "" {
		sb.WriteString(fmt.Sprintf(" COMMENT \"%s\"", t.Comment))
	}

	return sb.String()
}

// Fingerprint returns a stable 64-bit hash of the canonical DDL text,
// used for idempotent registration and snapshot change detection.
func (t *Table) Fingerprint() uint64 {
	return murmur3.Sum64([]byte(t.ToSQL()))
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i]
		}
	}
	return nil
}
