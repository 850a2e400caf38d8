package recyclebin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantID   *int64
		wantName string
	}{
		{"object", `{"id": 7, "name": "Laptops"}`, i64(7), "Laptops"},
		{"object id only", `{"id": 7}`, i64(7), ""},
		{"bare number", `7`, i64(7), ""},
		{"numeric string", `"7"`, i64(7), ""},
		{"null", `null`, nil, ""},
		{"non-numeric string", `"unknown"`, nil, ""},
		{"unexpected array", `[1,2]`, nil, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ref Ref
			require.NoError(t, json.Unmarshal([]byte(tc.input), &ref))
			if tc.wantID == nil {
				assert.Nil(t, ref.ID)
			} else {
				require.NotNil(t, ref.ID)
				assert.Equal(t, *tc.wantID, *ref.ID)
			}
			assert.Equal(t, tc.wantName, ref.Name)
		})
	}
}

func TestRef_Key(t *testing.T) {
	assert.Equal(t, "42", Ref{ID: i64(42)}.Key())
	assert.Equal(t, "", Ref{Name: "only a name"}.Key())
}

func TestDeletedRecord_Decode(t *testing.T) {
	payload := `{
		"id": 101,
		"name": "MacBook Pro",
		"asset_tag": "AST-0101",
		"deleted_at": "2026-01-15 09:30:00",
		"purchase_cost": "1499.99",
		"category": 3,
		"manufacturer": {"id": 2, "name": "Apple"},
		"supplier": null,
		"location": "9",
		"product": 55
	}`

	var rec DeletedRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, int64(101), rec.ID)
	assert.True(t, rec.DeletedAt.Valid)
	require.NotNil(t, rec.PurchaseCost)
	assert.Equal(t, "1499.99", rec.PurchaseCost.String())
	assert.Equal(t, "3", rec.Category.Key())
	assert.Equal(t, "Apple", rec.Manufacturer.Name)
	assert.False(t, rec.Supplier.Present())
	assert.Equal(t, "9", rec.Location.Key())
	require.NotNil(t, rec.Product.ID)
	assert.Equal(t, int64(55), *rec.Product.ID)
}

func TestDeletedRecord_DecodeMalformedDeletedAt(t *testing.T) {
	var rec DeletedRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "deleted_at": "pending"}`), &rec))
	assert.False(t, rec.DeletedAt.Valid, "unparseable deleted_at must read as absent")
}

func i64(v int64) *int64 { return &v }
