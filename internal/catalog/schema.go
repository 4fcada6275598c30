package catalog

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID identifies the catalog schema
const SchemaID = "https://github.com/msto63/nic/schemas/commands.json"

// Schema returns the JSON Schema of the catalog file format. Editors with
// YAML language support can validate catalog files against it.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	s := r.Reflect(&File{})
	s.ID = jsonschema.ID(SchemaID)
	s.Title = "nic command catalog"
	return s
}

// SchemaJSON returns the indented JSON encoding of Schema
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
