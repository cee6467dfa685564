package httpapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/harborlog/server/internal/harborlog/types"
)

// toStruct converts any JSON-encodable payload into a protobuf Struct with the
// same keys as the JSON response.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("toStruct marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("toStruct unmarshal: %w", err)
	}
	return structpb.NewStruct(m)
}

// recordView is the listing shape of one record: its export fields keyed by
// column name.
func recordView(r types.Record) map[string]any {
	fields := r.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

func recordViews(recs []types.Record) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordView(r))
	}
	return out
}
