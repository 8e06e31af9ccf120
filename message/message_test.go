package message

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentKeepsIntegers(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"id":9007199254740993}`))
	require.NoError(t, err)

	id, ok := doc.Int("id")
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), id)
}

func TestParseDocumentRejectsTrailingData(t *testing.T) {
	for _, raw := range []string{`{} {}`, `{"a":1} x`, `{"a":1}}`, `{"a":1}]`, `[1]]`, `"s",`} {
		_, err := ParseDocument([]byte(raw))
		assert.ErrorIs(t, err, ErrDecode, raw)
	}

	doc, err := ParseDocument([]byte("{\"a\":1} \n\t"))
	require.NoError(t, err)
	assert.True(t, doc.Has("a"))
}

func TestClassification(t *testing.T) {
	event, err := ParseDocument([]byte(`{"event":"view-mapped","view":{"id":3}}`))
	require.NoError(t, err)
	assert.True(t, event.IsEvent())
	assert.False(t, event.IsError())
	assert.Equal(t, "view-mapped", event.EventName())

	failure, err := ParseDocument([]byte(`{"error":"No such method found!"}`))
	require.NoError(t, err)
	assert.True(t, failure.IsError())
	assert.False(t, failure.IsEvent())
	assert.Equal(t, "No such method found!", failure.ErrorMessage())

	list, err := ParseDocument([]byte(`[{"event":"x"}]`))
	require.NoError(t, err)
	assert.False(t, list.IsEvent(), "arrays are never events")
}

func TestFieldMissing(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"result":"ok"}`))
	require.NoError(t, err)

	_, err = doc.Field("info")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), `"info"`)
}

func TestDecodeTyped(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"id":42,"role":"toplevel","unknown":[1,2]}`))
	require.NoError(t, err)

	var v struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, doc.Decode(&v))
	assert.Equal(t, int64(42), v.ID)
	assert.Equal(t, "toplevel", v.Role)

	var wrong struct {
		ID string `json:"id"`
	}
	assert.ErrorIs(t, doc.Decode(&wrong), ErrDecode)
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"a":[1,2.5,"x",null,true],"b":{"c":{}}}`)
	doc, err := ParseDocument(raw)
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var again Document
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, doc.Value(), again.Value())
}

func TestRequestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Request{}).Validate(), ErrEmptyMethod)
	assert.NoError(t, NewRequest("expo/toggle", nil).Validate())
}
