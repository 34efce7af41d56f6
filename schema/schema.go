//
// Copyright (C) 2025 the dynamap authors
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/oproto/dynamap
//

// Package schema compiles declarative YAML table definitions into entity
// mappers over dynamic Record values. The document declares tables, their
// entity types with discriminators, typed fields and relations; Bind turns
// a declaration into a ready *dynamap.Mapper[Record].
package schema

import (
	"fmt"

	"github.com/fogfish/faults"
	"gopkg.in/yaml.v3"
)

const (
	errInvalidSchema = faults.Type("invalid schema document")
	errInvalidRecord = faults.Type("invalid record")
	errUnknownEntity = faults.Type("unknown entity type")
)

// Schema is the root of the declarative document.
type Schema struct {
	Version int     `yaml:"version"`
	Tables  []Table `yaml:"tables"`
}

// Table declares a single-table layout and the entity types stored in it.
type Table struct {
	Name         string   `yaml:"name"`
	PartitionKey string   `yaml:"partitionKey"`
	SortKey      string   `yaml:"sortKey"`
	Entities     []Entity `yaml:"entities"`
}

// Entity declares one entity type: its discriminator, fields and relations.
// Exactly one of SortKeyValue, SortKeyPrefix or Attribute must be set.
type Entity struct {
	Type          string     `yaml:"type"`
	SortKeyValue  string     `yaml:"sortKey"`
	SortKeyPrefix string     `yaml:"sortKeyPrefix"`
	Attribute     string     `yaml:"attribute"`
	Value         string     `yaml:"value"`
	Fields        []Field    `yaml:"fields"`
	Relations     []Relation `yaml:"relations"`
}

// Field declares a typed attribute of the entity. Attr defaults to Name.
type Field struct {
	Name     string `yaml:"name"`
	Attr     string `yaml:"attr"`
	Kind     string `yaml:"kind"`
	Format   string `yaml:"format"`
	Optional bool   `yaml:"optional"`
}

// Relation declares a related entity binding: the sort-key pattern, the
// target entity type within the same table and the record field receiving
// the nested value(s).
type Relation struct {
	Pattern string `yaml:"pattern"`
	Arity   string `yaml:"arity"`
	Entity  string `yaml:"entity"`
	Field   string `yaml:"field"`
}

// declared field kinds and the values they carry
const (
	KindString    = "string"
	KindNumber    = "number"
	KindBool      = "bool"
	KindTime      = "time"
	KindBinary    = "binary"
	KindMap       = "map"
	KindList      = "list"
	KindStringSet = "string-set"
	KindNumberSet = "number-set"
	KindBinarySet = "binary-set"
)

var kinds = map[string]struct{}{
	KindString:    {},
	KindNumber:    {},
	KindBool:      {},
	KindTime:      {},
	KindBinary:    {},
	KindMap:       {},
	KindList:      {},
	KindStringSet: {},
	KindNumberSet: {},
	KindBinarySet: {},
}

// Parse reads the YAML document and validates the declarations. Unknown
// kinds, arities and malformed discriminators are reported here; dangling
// relation targets and overlapping patterns surface at Bind time.
func Parse(doc []byte) (*Schema, error) {
	schema := &Schema{}
	if err := yaml.Unmarshal(doc, schema); err != nil {
		return nil, errInvalidSchema.New(err)
	}

	if schema.Version != 1 {
		return nil, errInvalidSchema.New(fmt.Errorf("unsupported version %d", schema.Version))
	}

	for ti := range schema.Tables {
		if err := schema.Tables[ti].validate(); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

// Table finds the table declaration by name.
func (schema *Schema) Table(name string) (Table, error) {
	for _, t := range schema.Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, errInvalidSchema.New(fmt.Errorf("table %q is not declared", name))
}

func (t *Table) validate() error {
	if t.Name == "" {
		return errInvalidSchema.New(fmt.Errorf("table name is required"))
	}
	if t.PartitionKey == "" {
		return errInvalidSchema.New(fmt.Errorf("partition key is required for table %s", t.Name))
	}

	seen := map[string]struct{}{}
	for ei := range t.Entities {
		e := &t.Entities[ei]
		if e.Type == "" {
			return errInvalidSchema.New(fmt.Errorf("entity type is required in table %s", t.Name))
		}
		if _, has := seen[e.Type]; has {
			return errInvalidSchema.New(fmt.Errorf("entity %s is declared twice in table %s", e.Type, t.Name))
		}
		seen[e.Type] = struct{}{}

		if err := e.validate(t); err != nil {
			return err
		}
	}

	return nil
}

func (e *Entity) validate(t *Table) error {
	forms := 0
	if e.SortKeyValue != "" {
		forms++
	}
	if e.SortKeyPrefix != "" {
		forms++
	}
	if e.Attribute != "" {
		forms++
		if e.Value == "" {
			return errInvalidSchema.New(fmt.Errorf("attribute discriminator of %s requires a value", e.Type))
		}
	}
	if forms != 1 {
		return errInvalidSchema.New(fmt.Errorf("entity %s requires exactly one discriminator", e.Type))
	}

	for fi := range e.Fields {
		f := &e.Fields[fi]
		if f.Name == "" {
			return errInvalidSchema.New(fmt.Errorf("field name is required for %s", e.Type))
		}
		if f.Attr == "" {
			f.Attr = f.Name
		}
		if _, has := kinds[f.Kind]; !has {
			return errInvalidSchema.New(fmt.Errorf("unknown kind %q of field %s.%s", f.Kind, e.Type, f.Name))
		}
	}

	if len(e.Relations) != 0 && t.SortKey == "" {
		return errInvalidSchema.New(fmt.Errorf("sort key is required for table %s, entity %s declares relations", t.Name, e.Type))
	}

	for _, r := range e.Relations {
		if r.Pattern == "" {
			return errInvalidSchema.New(fmt.Errorf("relation pattern is required for %s", e.Type))
		}
		if r.Arity != "one" && r.Arity != "many" {
			return errInvalidSchema.New(fmt.Errorf("unknown arity %q of relation %q for %s", r.Arity, r.Pattern, e.Type))
		}
		if r.Entity == "" || r.Field == "" {
			return errInvalidSchema.New(fmt.Errorf("relation %q of %s requires entity and field", r.Pattern, e.Type))
		}
	}

	return nil
}
