package report

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the JSON report as indented JSON.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: true,
	}
	s := r.Reflect(&AggregateReport{})
	s.Title = "docint report"
	s.Description = "Aggregate result of a documentation integrity run."
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return out, nil
}
