package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prbot/internal/review"
)

// WriteCommentsJSON writes the comment sequence as an indented JSON array.
// A nil slice is written as [] so the downstream post step always sees an
// array.
func WriteCommentsJSON(w io.Writer, comments []review.Comment) error {
	if comments == nil {
		comments = []review.Comment{}
	}
	data, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// WriteDraftJSON writes a pull request draft as an indented JSON object.
func WriteDraftJSON(w io.Writer, d review.PRDraft) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
