package gm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
)

// ErrInvalidResponse wraps every parse or shape failure of a Game Master reply.
var ErrInvalidResponse = errors.New("invalid game master response")

// Response is the structured reply for one turn. Only Narrative is required.
type Response struct {
	Narrative      string            `json:"narrative"`
	CheckRequest   *check.Request    `json:"checkRequest,omitempty"`
	HPChange       *int              `json:"hpChange,omitempty"`
	SPChange       *int              `json:"spChange,omitempty"`
	StatUpdates    map[string]int    `json:"statUpdates,omitempty"`
	NewSkills      []character.Skill `json:"newSkills,omitempty"`
	NewItems       []character.Item  `json:"newItems,omitempty"`
	RemovedItemIDs []string          `json:"removedItemIds,omitempty"`
}

// HasStateChanges reports whether any field besides the narrative and a
// check request is populated.
func (r *Response) HasStateChanges() bool {
	return r != nil && (r.HPChange != nil ||
		r.SPChange != nil ||
		len(r.StatUpdates) > 0 ||
		len(r.NewSkills) > 0 ||
		len(r.NewItems) > 0 ||
		len(r.RemovedItemIDs) > 0)
}

// Validate checks the reply shape. Any violation rejects the whole reply.
func (r *Response) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	if strings.TrimSpace(r.Narrative) == "" {
		return fmt.Errorf("%w: narrative is required", ErrInvalidResponse)
	}
	if r.CheckRequest != nil {
		if err := r.CheckRequest.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	for k := range r.StatUpdates {
		if !character.Attribute(k).Valid() {
			return fmt.Errorf("%w: unknown stat %q", ErrInvalidResponse, k)
		}
	}
	for i, s := range r.NewSkills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: newSkills[%d] has no name", ErrInvalidResponse, i)
		}
	}
	for i, it := range r.NewItems {
		switch {
		case strings.TrimSpace(it.ID) == "":
			return fmt.Errorf("%w: newItems[%d] has no id", ErrInvalidResponse, i)
		case strings.TrimSpace(it.Name) == "":
			return fmt.Errorf("%w: newItems[%d] has no name", ErrInvalidResponse, i)
		case !it.Type.Valid():
			return fmt.Errorf("%w: newItems[%d] has unknown type %q", ErrInvalidResponse, i, it.Type)
		case it.EquipSlot != "" && !it.EquipSlot.Valid():
			return fmt.Errorf("%w: newItems[%d] has unknown equipSlot %q", ErrInvalidResponse, i, it.EquipSlot)
		}
	}
	return nil
}

// Parse decodes and validates a raw model reply. Markdown code fences and
// prose around the JSON object are tolerated; unknown fields are ignored.
func Parse(raw string) (*Response, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if len(resp.StatUpdates) > 0 {
		normalized := make(map[string]int, len(resp.StatUpdates))
		for k, v := range resp.StatUpdates {
			normalized[strings.ToLower(strings.TrimSpace(k))] = v
		}
		resp.StatUpdates = normalized
	}
	if resp.CheckRequest != nil {
		resp.CheckRequest.Attribute = character.Attribute(strings.ToLower(string(resp.CheckRequest.Attribute)))
	}

	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}
	return s[start : end+1], nil
}
