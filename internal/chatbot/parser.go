package chatbot

import (
	"encoding/json"
	"strings"

	"github.com/raphaelgruber/recall-go/internal/models"
)

// Marker separates the natural-language answer from the embedded
// structured payload in generation output.
const Marker = "JSON_DATA:"

// structuredPayload is the expected shape after the marker. Entries are
// held raw so one malformed entry cannot invalidate its siblings.
type structuredPayload struct {
	Results []json.RawMessage `json:"results"`
}

// Parse splits raw generation output into the natural-language response
// and the structured references. It never fails: a missing marker means
// the whole (trimmed) text is the answer, and a malformed payload
// degrades to an empty reference list. Entries missing a summary or a
// conversation id are dropped individually.
func Parse(raw string) models.ParsedResult {
	parts := strings.SplitN(raw, Marker, 2)

	result := models.ParsedResult{
		NaturalResponse: strings.TrimSpace(parts[0]),
		References:      []models.Reference{},
	}
	if len(parts) < 2 {
		return result
	}

	// Decode rather than Unmarshal: models sometimes append trailing
	// prose after the JSON object.
	var payload structuredPayload
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(parts[1])))
	if err := dec.Decode(&payload); err != nil {
		return result
	}

	for _, entry := range payload.Results {
		var ref models.Reference
		if err := json.Unmarshal(entry, &ref); err != nil {
			continue
		}
		if ref.Summary == "" || ref.ConversationID == "" {
			continue
		}
		result.References = append(result.References, ref)
	}
	return result
}
