package layout

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// exchangeSchema describes the layout exchange document:
// [{"title": "Nome", "coords": [x, y, w, h]}, ...]
const exchangeSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "coords"],
    "properties": {
      "title":  {"type": "string"},
      "coords": {
        "type": "array",
        "minItems": 4,
        "maxItems": 4,
        "items": {"type": "integer"}
      }
    }
  }
}`

var layoutSchema = jsonschema.MustCompileString("layout.schema.json", exchangeSchema)
