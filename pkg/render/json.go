package render

import (
	"encoding/json"

	"github.com/matzehuels/seatplan/pkg/placement"
)

// JSON encodes the placement result with two-space indentation.
func JSON(res *placement.Result) ([]byte, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
