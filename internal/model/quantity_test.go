package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want Quantity
	}{
		{`{"stock": 12}`, 12},
		{`{"stock": "15"}`, 15},
		{`{"stock": " 8 "}`, 8},
		{`{"stock": 3.0}`, 3},
		{`{"stock": ""}`, 0},
		{`{"stock": -2}`, -2},
	}
	for _, tc := range cases {
		var req CreateProductRequest
		require.NoError(t, json.Unmarshal([]byte(tc.in), &req), tc.in)
		assert.Equal(t, tc.want, req.Stock, tc.in)
	}
}

func TestQuantityUnmarshalRejectsText(t *testing.T) {
	var req CreateProductRequest
	assert.Error(t, json.Unmarshal([]byte(`{"stock": "lots"}`), &req))
}

func TestQuantityUnmarshalRejectsFractions(t *testing.T) {
	for _, in := range []string{`{"stock": 3.9}`, `{"stock": "2.5"}`, `{"stock": -0.5}`} {
		var req CreateProductRequest
		assert.ErrorContains(t, json.Unmarshal([]byte(in), &req), "whole number", in)
	}
}

func TestUpdateRequestPresence(t *testing.T) {
	var omitted UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Bolt"}`), &omitted))
	assert.Nil(t, omitted.Stock)
	assert.Equal(t, map[string]interface{}{"name": "Bolt"}, omitted.Columns())

	var cleared UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"category": "", "stock": 0}`), &cleared))
	require.NotNil(t, cleared.Stock)
	assert.Equal(t, map[string]interface{}{"category": "", "stock": 0}, cleared.Columns())
	assert.False(t, cleared.IsEmpty())

	assert.True(t, (&UpdateProductRequest{}).IsEmpty())
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 0, ParseQuantity(""))
	assert.Equal(t, 0, ParseQuantity("abc"))
	assert.Equal(t, 0, ParseQuantity("-4"))
	assert.Equal(t, 7, ParseQuantity(" 7 "))
	assert.Equal(t, 2, ParseQuantity("2.5"))
}
