package spatialdata

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Format identifies the on-disk metadata version a store was written
// with. Version tokens are short ("0.4"); they are parsed tolerantly.
type Format struct {
	Version semver.Version
}

// DefaultFormat returns the current format (version 0.4).
func DefaultFormat() Format {
	f, err := ParseFormatVersion("0.4")
	if err != nil {
		panic(err)
	}
	return f
}

// ParseFormatVersion parses a format version token such as "0.4".
func ParseFormatVersion(token string) (Format, error) {
	v, err := semver.ParseTolerant(token)
	if err != nil {
		return Format{}, fmt.Errorf("parsing format version %q: %w", token, err)
	}
	return Format{Version: v}, nil
}

// String returns the version token.
func (f Format) String() string {
	return f.Version.String()
}

// transformRenameVersion is where the "translate" transformation type
// was renamed to "translation".
var transformRenameVersion = semver.MustParse("0.4.0")

// legacyTransforms reports whether stores of this version still use the
// old "translate" type name.
func (f Format) legacyTransforms() bool {
	return f.Version.LT(transformRenameVersion)
}

// multiscalesSchema constrains the shape of the multiscales attribute
// block when strict metadata validation is requested. It deliberately
// checks structure only; semantic cross-checks (transformation counts,
// geometry names) remain in the decoders.
const multiscalesSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["datasets"],
		"properties": {
			"name": {"type": "string"},
			"axes": {
				"type": "array",
				"items": {
					"anyOf": [
						{"type": "string"},
						{"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
					]
				}
			},
			"datasets": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["path"],
					"properties": {
						"path": {"type": "string"},
						"coordinateTransformations": {
							"type": "array",
							"items": {"type": "object", "required": ["type"]}
						}
					}
				}
			}
		}
	}
}`

var compiledMultiscalesSchema = jsonschema.MustCompileString("multiscales.json", multiscalesSchema)

// validateMultiscales checks a node's raw multiscales attribute value
// against the schema. Violations are malformed-attribute failures.
func validateMultiscales(v interface{}) error {
	if err := compiledMultiscalesSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: multiscales schema: %v", ErrMalformedAttributes, err)
	}
	return nil
}
