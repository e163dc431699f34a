package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"dunemcp/internal/domain"
)

func TestNormalize_StructuredRoundTripPreservesFields(t *testing.T) {
	body := `{
		"execution_id": "01HKZJ2683PHF9Q9PHHQ8FW4Q1",
		"state": "QUERY_STATE_COMPLETED",
		"result": {
			"rows": [{"amount": 12345678901234567890, "ratio": 0.1, "token": null}],
			"metadata": {"column_names": ["amount", "ratio", "token"], "total_row_count": 1}
		},
		"is_execution_finished": true
	}`

	result, err := Normalize(domain.ResponseStructured, domain.TransportResponse{StatusCode: 200, Body: []byte(body)})
	require.NoError(t, err)
	require.Equal(t, domain.ResponseStructured, result.Kind)
	require.Nil(t, result.Tabular)

	encoded, err := json.Marshal(result.Payload())
	require.NoError(t, err)
	require.JSONEq(t, body, string(encoded))

	rows := result.Record["result"].(map[string]any)["rows"].([]any)
	require.Equal(t, json.Number("12345678901234567890"), rows[0].(map[string]any)["amount"])
}

func TestNormalize_TabularKeepsBodyVerbatim(t *testing.T) {
	csv := "block_time,amount\n2024-01-01 00:00:00,1.5\n\"a,b\",\"multi\nline\"\n"

	result, err := Normalize(domain.ResponseTabular, domain.TransportResponse{StatusCode: 200, Body: []byte(csv)})
	require.NoError(t, err)
	require.Equal(t, domain.ResponseTabular, result.Kind)
	require.Nil(t, result.Record)
	require.Equal(t, csv, result.Tabular.Data)

	encoded, err := json.Marshal(result.Payload())
	require.NoError(t, err)
	want, err := json.Marshal(map[string]string{"csv_data": csv})
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(encoded))
}

func TestNormalize_TabularIgnoresJSONLookingBody(t *testing.T) {
	result, err := Normalize(domain.ResponseTabular, domain.TransportResponse{Body: []byte(`{"a":1}`)})
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, result.Tabular.Data)
}

func TestNormalize_EmptyStructuredBody(t *testing.T) {
	result, err := Normalize(domain.ResponseStructured, domain.TransportResponse{StatusCode: 204})
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]any{}, result.Record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_MalformedStructuredBody(t *testing.T) {
	for name, body := range map[string]string{
		"truncated": `{"execution_id": "01H`,
		"html":      `<html>bad gateway</html>`,
		"array":     `[1,2,3]`,
		"string":    `"ok"`,
		"null":      `null`,
		"trailing":  `{"a":1} {"b":2}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(domain.ResponseStructured, domain.TransportResponse{StatusCode: 200, Body: []byte(body)})
			code, ok := domain.CodeFrom(err)
			require.True(t, ok)
			require.Equal(t, domain.CodeMalformedResponse, code)
		})
	}
}

func TestNormalize_UnknownKind(t *testing.T) {
	_, err := Normalize("xml", domain.TransportResponse{})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeInternal, code)
}
