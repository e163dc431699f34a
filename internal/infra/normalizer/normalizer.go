// Package normalizer converts a successful upstream body into a tool result.
// The body shape is chosen by the tool's declared response kind, never by
// inspecting the URL or content.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dunemcp/internal/domain"
)

const op = "normalizer"

// Normalize maps a 2xx response to the canonical result shape. Field names
// and values pass through unchanged; numbers keep their exact text.
func Normalize(kind domain.ResponseKind, resp domain.TransportResponse) (domain.ToolResult, error) {
	switch kind {
	case domain.ResponseTabular:
		return domain.ToolResult{
			Kind:    domain.ResponseTabular,
			Tabular: &domain.TabularPayload{Data: string(resp.Body)},
		}, nil
	case domain.ResponseStructured:
		record, err := DecodeRecord(resp.Body)
		if err != nil {
			return domain.ToolResult{}, err
		}
		return domain.ToolResult{Kind: domain.ResponseStructured, Record: record}, nil
	default:
		return domain.ToolResult{}, domain.Errorf(domain.CodeInternal, op, "unknown response kind %q", kind)
	}
}

// DecodeRecord parses a JSON object body. An empty body is an empty record.
func DecodeRecord(body []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, domain.E(domain.CodeMalformedResponse, op, "response body is not valid JSON", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.E(domain.CodeMalformedResponse, op, "response body has trailing data after the JSON value", err)
	}

	record, ok := value.(map[string]any)
	if !ok {
		return nil, domain.E(domain.CodeMalformedResponse, op,
			fmt.Sprintf("expected a JSON object, got %s", jsonKind(value)), nil)
	}
	return record, nil
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}
