package github

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/dshills/prbot/internal/review"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed comment.schema.json
var commentSchemaJSON string

var commentSchema = jsonschema.MustCompileString("comment.schema.json", commentSchemaJSON)

// InvalidComment records a comment rejected by schema validation.
type InvalidComment struct {
	Index int
	Err   error
}

// DecodeComments parses a comments artifact and validates each element
// against the comment schema. Invalid elements are returned separately and
// do not abort decoding; only a document that is not a JSON array fails.
func DecodeComments(data []byte) ([]review.Comment, []InvalidComment, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("comments file is not a JSON array: %w", err)
	}

	var valid []review.Comment
	var invalid []InvalidComment
	for i, r := range raw {
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			invalid = append(invalid, InvalidComment{Index: i, Err: err})
			continue
		}
		if err := commentSchema.Validate(v); err != nil {
			invalid = append(invalid, InvalidComment{Index: i, Err: err})
			continue
		}
		var c review.Comment
		if err := json.Unmarshal(r, &c); err != nil {
			invalid = append(invalid, InvalidComment{Index: i, Err: err})
			continue
		}
		valid = append(valid, c)
	}
	return valid, invalid, nil
}
