package decal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Analysis is the structured-output reply for a Helmet 1 photo.
type Analysis struct {
	HelmetType    HelmetType `json:"helmetType"`
	DecalPromptEn Prompt     `json:"decalPromptEn"`
}

// Classification is the structured-output reply for a Helmet 2 photo.
type Classification struct {
	HelmetType HelmetType `json:"helmetType"`
}

var ErrEmptyAnalysis = errors.New("empty analysis result")

func ParseAnalysis(raw string) (Analysis, error) {
	var a Analysis
	if err := decodeModelJSON(raw, &a); err != nil {
		return Analysis{}, err
	}
	if a.HelmetType != "" && !a.HelmetType.Valid() {
		if t, ok := ParseHelmetType(string(a.HelmetType)); ok {
			a.HelmetType = t
		} else {
			return Analysis{}, fmt.Errorf("unknown helmet type %q", a.HelmetType)
		}
	}
	return a, nil
}

// ParseClassification tolerates an unknown or missing type by returning an
// empty HelmetType.
func ParseClassification(raw string) (Classification, error) {
	var c Classification
	if err := decodeModelJSON(raw, &c); err != nil {
		return Classification{}, err
	}
	if t, ok := ParseHelmetType(string(c.HelmetType)); ok {
		c.HelmetType = t
	} else {
		c.HelmetType = ""
	}
	return c, nil
}

func decodeModelJSON(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyAnalysis
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}
