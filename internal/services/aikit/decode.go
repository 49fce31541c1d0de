package aikit

import (
	"encoding/json"
	"errors"
)

var errUnrecognizedSchema = errors.New("response matched no known schema")

// strictUnmarshal decodes JSON without schema enforcement but rejects
// syntactically invalid payloads; candidate validators decide structural fit.
func strictUnmarshal(raw []byte, dst any) error {
	return json.Unmarshal(raw, dst)
}
