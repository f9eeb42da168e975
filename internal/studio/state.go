package studio

import (
	"fmt"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gemini"
)

// Status is the Helmet 1 analysis status.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusExtracted Status = "extracted"
	StatusError     Status = "error"
)

type PromptTab string

const (
	PromptSimple PromptTab = "simple"
	PromptPro    PromptTab = "pro"
)

func (t PromptTab) Valid() bool {
	return t == PromptSimple || t == PromptPro
}

// Tab is the result view.
type Tab string

const (
	TabSingle Tab = "single"
	TabFull   Tab = "full"
	TabStyle  Tab = "style"
)

func (t Tab) Valid() bool {
	switch t {
	case TabSingle, TabFull, TabStyle:
		return true
	default:
		return false
	}
}

type StyleSettings struct {
	ID             decal.StyleID
	Strength       int
	PreserveFinish bool
	LockSeed       bool
}

func (s StyleSettings) cacheKey() string {
	return fmt.Sprintf("%s-%d-%t-%t", s.ID, s.Strength, s.PreserveFinish, s.LockSeed)
}

// InFlight marks which request classes are running. Classes do not exclude
// each other.
type InFlight struct {
	Helmet2    bool
	SingleView bool
	FullView   bool
	Style      bool
}

type State struct {
	Helmet1       *gemini.ImageInput
	Helmet1Status Status

	Fields         decal.Prompt
	Language       decal.Language
	PreserveFinish bool
	AvoidZones     bool
	// EditedPrompt is the labeled simple prompt; ProPrompt is empty until
	// Helmet 1 is extracted and a helmet type is known.
	EditedPrompt string
	ProPrompt    string
	PromptTab    PromptTab

	Helmet2         *gemini.ImageInput
	HelmetType      decal.HelmetType
	RecommendedType decal.HelmetType
	LockedType      decal.HelmetType

	Result         string
	PromptTypeUsed PromptTab
	FullViewResult string
	StyleResult    string
	StyleResultID  decal.StyleID
	Style          StyleSettings
	ActiveTab      Tab

	InFlight InFlight
	Error    string
}

// EffectiveType is the type used for generation: a type read from the
// Helmet 2 photo wins over the selected one, which wins over the
// recommendation.
func (st State) EffectiveType() decal.HelmetType {
	switch {
	case st.LockedType != "":
		return st.LockedType
	case st.HelmetType != "":
		return st.HelmetType
	default:
		return st.RecommendedType
	}
}

// Brief is the prompt text for tab.
func (st State) Brief(tab PromptTab) string {
	if tab == PromptPro {
		return st.ProPrompt
	}
	return st.EditedPrompt
}

func initialState() State {
	st := State{
		Helmet1Status:  StatusIdle,
		Language:       decal.English,
		PreserveFinish: true,
		AvoidZones:     true,
		PromptTab:      PromptSimple,
		ActiveTab:      TabSingle,
		Style: StyleSettings{
			ID:             decal.StyleLineSketch,
			Strength:       decal.DefaultStyleStrength,
			PreserveFinish: true,
		},
	}
	st.refreshPrompts()
	return st
}

func (st *State) refreshPrompts() {
	st.EditedPrompt = decal.Encode(st.Fields, st.Language, st.PreserveFinish, st.AvoidZones)

	t := st.EffectiveType()
	if st.Helmet1Status == StatusExtracted && t != "" {
		st.ProPrompt = decal.BuildProPrompt(st.Fields, t, st.Language, st.PreserveFinish)
	} else {
		st.ProPrompt = ""
	}
}

// resetOutputs drops every generated image and returns the view to the
// single-view tab.
func (st *State) resetOutputs() {
	st.Result = ""
	st.PromptTypeUsed = ""
	st.FullViewResult = ""
	st.StyleResult = ""
	st.StyleResultID = ""
	st.ActiveTab = TabSingle
}

func (st State) clone() State {
	out := st
	if st.Helmet1 != nil {
		img := *st.Helmet1
		out.Helmet1 = &img
	}
	if st.Helmet2 != nil {
		img := *st.Helmet2
		out.Helmet2 = &img
	}
	return out
}
