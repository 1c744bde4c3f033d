package gm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, r *Response)
	}{
		{
			name: "narrative only",
			raw:  `{"narrative": "The tavern is warm."}`,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, "The tavern is warm.", r.Narrative)
				assert.False(t, r.HasStateChanges())
				assert.Nil(t, r.CheckRequest)
			},
		},
		{
			name: "fenced with prose",
			raw:  "Here you go:\n```json\n{\"narrative\": \"Rain falls.\", \"hpChange\": -2}\n```",
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, "Rain falls.", r.Narrative)
				require.NotNil(t, r.HPChange)
				assert.Equal(t, -2, *r.HPChange)
			},
		},
		{
			name: "full reply",
			raw: `{
				"narrative": "You win.",
				"spChange": 3,
				"statUpdates": {"Strength": 16},
				"newSkills": [{"name": "Haggling", "description": "Better prices"}],
				"newItems": [{"id": "g1", "name": "Gold Ring", "description": "Shiny", "type": "misc", "equipSlot": "accessory"}],
				"removedItemIds": ["3"],
				"mood": "cheerful"
			}`,
			check: func(t *testing.T, r *Response) {
				assert.Equal(t, map[string]int{"strength": 16}, r.StatUpdates)
				assert.Equal(t, character.SlotAccessory, r.NewItems[0].EquipSlot)
				assert.Equal(t, []string{"3"}, r.RemovedItemIDs)
				assert.True(t, r.HasStateChanges())
			},
		},
		{
			name: "check request",
			raw:  `{"narrative": "The lock is tricky.", "checkRequest": {"attribute": "Dexterity", "difficulty": 15, "reason": "pick the lock"}}`,
			check: func(t *testing.T, r *Response) {
				require.NotNil(t, r.CheckRequest)
				assert.Equal(t, character.Dexterity, r.CheckRequest.Attribute)
				assert.Equal(t, 15, r.CheckRequest.Difficulty)
			},
		},
		{name: "missing narrative", raw: `{"hpChange": -3}`, wantErr: true},
		{name: "blank narrative", raw: `{"narrative": "  "}`, wantErr: true},
		{name: "not json", raw: `the goblin attacks`, wantErr: true},
		{name: "truncated json", raw: `{"narrative": "abc"`, wantErr: true},
		{name: "wrong field type", raw: `{"narrative": "x", "hpChange": "lots"}`, wantErr: true},
		{name: "bad check attribute", raw: `{"narrative": "x", "checkRequest": {"attribute": "luck", "difficulty": 10, "reason": "r"}}`, wantErr: true},
		{name: "check without reason", raw: `{"narrative": "x", "checkRequest": {"attribute": "wisdom", "difficulty": 10}}`, wantErr: true},
		{name: "bad stat key", raw: `{"narrative": "x", "statUpdates": {"luck": 3}}`, wantErr: true},
		{name: "bad item type", raw: `{"narrative": "x", "newItems": [{"id": "1", "name": "n", "type": "food"}]}`, wantErr: true},
		{name: "bad item slot", raw: `{"narrative": "x", "newItems": [{"id": "1", "name": "n", "type": "misc", "equipSlot": "tail"}]}`, wantErr: true},
		{name: "item without id", raw: `{"narrative": "x", "newItems": [{"name": "n", "type": "misc"}]}`, wantErr: true},
		{name: "skill without name", raw: `{"narrative": "x", "newSkills": [{"description": "d"}]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestResponseSchema(t *testing.T) {
	schema := ResponseSchema()

	_, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"narrative"}, schema["required"])

	props := schema["properties"].(map[string]interface{})
	for _, key := range []string{"narrative", "checkRequest", "hpChange", "spChange", "statUpdates", "newSkills", "newItems", "removedItemIds"} {
		assert.Contains(t, props, key)
	}
}
