package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityValidate(t *testing.T) {
	unit := uuid.New()
	tests := []struct {
		name   string
		v      Visibility
		errMsg string
	}{
		{name: "all", v: VisibleToAll()},
		{name: "admin", v: VisibleToAdmins()},
		{name: "units", v: VisibleToUnits(unit)},
		{name: "units without ids", v: VisibleToUnits(), errMsg: "unit visibility requires at least one unit"},
		{name: "all with ids", v: Visibility{Kind: VisibilityAll, UnitIDs: []uuid.UUID{unit}}, errMsg: "unit list is only allowed for unit visibility"},
		{name: "unknown kind", v: Visibility{Kind: "board"}, errMsg: "visibility must be one of: all, units, admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.v.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.errMsg)
			}
		})
	}
}

func TestVisibilityAllowsMember(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.True(t, VisibleToAll().AllowsMember(nil))
	assert.False(t, VisibleToAdmins().AllowsMember([]uuid.UUID{a}))
	assert.True(t, VisibleToUnits(a, b).AllowsMember([]uuid.UUID{c, b}))
	assert.False(t, VisibleToUnits(a, b).AllowsMember([]uuid.UUID{c}))
	assert.False(t, VisibleToUnits(a).AllowsMember(nil))
}

func TestVisibilityUnmarshalJSON(t *testing.T) {
	unit := uuid.New()

	var doc struct {
		Visibility Visibility `json:"visibility"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"visibility":null}`), &doc))
	assert.Equal(t, VisibleToAll(), doc.Visibility)

	var v Visibility
	require.NoError(t, json.Unmarshal([]byte(`{}`), &v))
	assert.Equal(t, VisibleToAll(), v)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"units","unit_ids":["`+unit.String()+`"]}`), &v))
	assert.Equal(t, VisibleToUnits(unit), v)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":1}`), &v))
}
