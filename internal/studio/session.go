package studio

import (
	"context"
	"fmt"
	"sync"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gateway"
	"decal-transfer-studio/internal/gemini"
)

const msgParseFailed = "Failed to parse analysis result."

type job int

const (
	jobHelmet1 job = iota
	jobHelmet2
	jobSingleView
	jobFullView
	jobStyle
)

// Session is one user's wizard. Methods are safe for concurrent use; the
// lock is not held while an upstream call runs.
type Session struct {
	studio *Studio

	mu    sync.Mutex
	st    State
	cache map[string]string
	// epoch changes on StartOver; resultGen changes whenever Result does.
	// Late responses that no longer match are dropped.
	epoch     uint64
	resultGen uint64
}

// File is a downloadable result image.
type File struct {
	Name     string
	MimeType string
	Data     []byte
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

// StyleCached reports whether ApplyStyle would be served from the cache.
func (s *Session) StyleCached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[s.st.Style.cacheKey()]
	return ok
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.st.InFlight
	return s.st.Helmet1Status == StatusAnalyzing || f.Helmet2 || f.SingleView || f.FullView || f.Style
}

// SelectHelmet1 starts over with img as Helmet 1 and analyzes it.
func (s *Session) SelectHelmet1(ctx context.Context, img gemini.ImageInput) error {
	s.mu.Lock()
	s.resetLocked()
	s.st.Helmet1 = &img
	s.mu.Unlock()

	return s.AnalyzeHelmet1(ctx)
}

// AnalyzeHelmet1 extracts the decal fields and recommended type from the
// current Helmet 1 photo.
func (s *Session) AnalyzeHelmet1(ctx context.Context) error {
	s.mu.Lock()
	if s.st.Helmet1 == nil {
		s.mu.Unlock()
		return ErrNoHelmet1
	}
	epoch, err := s.beginLocked(jobHelmet1)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	img := *s.st.Helmet1
	s.mu.Unlock()

	raw, err := s.studio.invoker.Call(ctx, gateway.ActionAnalyzeHelmet1, gateway.ImagePayload{Image: img})
	if !s.finish(epoch, jobHelmet1) {
		return ErrStale
	}
	defer s.mu.Unlock()

	if err != nil {
		s.st.Helmet1Status = StatusError
		return s.failLocked(ctxHelmet1Analysis, err)
	}

	analysis, err := decal.ParseAnalysis(raw)
	if err != nil {
		s.st.Helmet1Status = StatusError
		return s.failLocked(ctxHelmet1Parse, fmt.Errorf("%s %w", msgParseFailed, err))
	}

	s.st.Fields = analysis.DecalPromptEn
	s.st.RecommendedType = analysis.HelmetType
	if s.st.HelmetType == "" {
		s.st.HelmetType = analysis.HelmetType
	}
	s.st.Helmet1Status = StatusExtracted
	s.st.refreshPrompts()
	return nil
}

// SelectHelmet2 sets the target photo and locks the helmet type read from
// it. An unreadable classification leaves the type unlocked.
func (s *Session) SelectHelmet2(ctx context.Context, img gemini.ImageInput) error {
	s.mu.Lock()
	epoch, err := s.beginLocked(jobHelmet2)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	photo := &img
	s.st.Helmet2 = photo
	s.mu.Unlock()

	raw, err := s.studio.invoker.Call(ctx, gateway.ActionAnalyzeHelmet2, gateway.ImagePayload{Image: img})
	if !s.finish(epoch, jobHelmet2) {
		return ErrStale
	}
	defer s.mu.Unlock()

	if err != nil {
		return s.failLocked(ctxHelmet2Analysis, err)
	}
	if s.st.Helmet2 != photo {
		return ErrStale
	}

	c, err := decal.ParseClassification(raw)
	if err != nil {
		s.studio.logger.Warn("helmet 2 classification unreadable", "err", err)
		return nil
	}
	if c.HelmetType == "" {
		return nil
	}

	s.setTypeLocked(c.HelmetType)
	s.st.LockedType = c.HelmetType
	s.st.refreshPrompts()
	return nil
}

func (s *Session) ClearHelmet2() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Helmet2 = nil
	s.st.LockedType = ""
	s.st.refreshPrompts()
}

// ChangeHelmetType selects t. A different type drops every result and the
// style cache.
func (s *Session) ChangeHelmetType(t decal.HelmetType) error {
	if !t.Valid() {
		return ErrInvalidHelmetType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.st.LockedType != "" && t != s.st.LockedType {
		return ErrHelmetTypeLocked
	}
	s.setTypeLocked(t)
	s.st.refreshPrompts()
	return nil
}

// EditPrompt decodes a labeled prompt back into the fields. The simple
// prompt is re-encoded from them, so unlabeled lines do not survive.
func (s *Session) EditPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Fields = decal.Decode(text)
	s.st.refreshPrompts()
}

func (s *Session) ToggleLanguage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Language = s.st.Language.Toggle()
	s.st.refreshPrompts()
}

func (s *Session) SetPreserveFinish(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.PreserveFinish = v
	s.st.refreshPrompts()
}

func (s *Session) SetAvoidZones(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.AvoidZones = v
	s.st.refreshPrompts()
}

func (s *Session) SetPromptTab(tab PromptTab) error {
	if !tab.Valid() {
		return ErrInvalidTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.PromptTab = tab
	return nil
}

func (s *Session) SetActiveTab(tab Tab) error {
	if !tab.Valid() {
		return ErrInvalidTab
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.ActiveTab = tab
	return nil
}

func (s *Session) SetStyle(id decal.StyleID) error {
	if !id.Valid() {
		return ErrInvalidStyle
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Style.ID = id
	return nil
}

func (s *Session) SetStyleStrength(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Style.Strength = decal.ClampStrength(v)
}

func (s *Session) SetStylePreserveFinish(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Style.PreserveFinish = v
}

func (s *Session) SetStyleLockSeed(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Style.LockSeed = v
}

// GenerateSingleView applies the active prompt to the Helmet 2 photo, or
// renders a new helmet when there is none. Helmet 1 must be extracted.
func (s *Session) GenerateSingleView(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.st.Helmet1 == nil:
		s.mu.Unlock()
		return ErrNoHelmet1
	case s.st.Helmet1Status != StatusExtracted:
		s.mu.Unlock()
		return ErrHelmet1NotReady
	}
	t := s.st.EffectiveType()
	if t == "" {
		s.st.Error = msgSelectHelmetType
		s.mu.Unlock()
		return ErrNoHelmetType
	}
	epoch, err := s.beginLocked(jobSingleView)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	tab := s.st.PromptTab
	brief := s.st.Brief(tab)
	lang := s.st.Language
	var helmet2 *gemini.ImageInput
	if s.st.Helmet2 != nil {
		img := *s.st.Helmet2
		helmet2 = &img
	}
	s.mu.Unlock()

	action, payload, errContext, err := s.studio.singleViewRequest(t, lang, brief, helmet2)
	if err != nil {
		if !s.finish(epoch, jobSingleView) {
			return ErrStale
		}
		defer s.mu.Unlock()
		return s.failLocked(errContext, err)
	}

	result, err := s.studio.invoker.Call(ctx, action, payload)
	if !s.finish(epoch, jobSingleView) {
		return ErrStale
	}
	defer s.mu.Unlock()

	if err != nil {
		return s.failLocked(errContext, err)
	}

	s.st.resetOutputs()
	s.st.Result = result
	s.st.PromptTypeUsed = tab
	s.clearCacheLocked()
	s.resultGen++
	return nil
}

func (s *Studio) singleViewRequest(t decal.HelmetType, lang decal.Language, brief string, helmet2 *gemini.ImageInput) (gateway.Action, any, string, error) {
	if helmet2 != nil {
		return gateway.ActionEditImage, s.editPayload(*helmet2, decal.EditPrompt(t, lang, brief)), ctxSingleViewEdit, nil
	}

	if s.strategy == StrategyPlaceholder {
		img, err := s.placeholders.Image(t)
		if err != nil {
			return "", nil, ctxSingleViewGen, err
		}
		return gateway.ActionEditImage, s.editPayload(img, decal.PlaceholderPrompt(t, lang, brief)), ctxSingleViewGen, nil
	}

	return gateway.ActionGenerateImage, gateway.GeneratePayload{Prompt: decal.ImagenPrompt(t, lang, brief)}, ctxSingleViewGen, nil
}

// GenerateFullView composes main, front and rear views from the Single View
// result and the brief it was generated from.
func (s *Session) GenerateFullView(ctx context.Context) error {
	s.mu.Lock()
	if s.st.Result == "" {
		s.st.Error = msgNeedSingleView
		s.mu.Unlock()
		return ErrNoResult
	}
	epoch, err := s.beginLocked(jobFullView)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.resultGen
	source := s.st.Result
	brief := s.st.Brief(s.st.PromptTypeUsed)
	s.mu.Unlock()

	result, err := s.editResult(ctx, source, decal.FullViewPrompt(brief))
	if !s.finish(epoch, jobFullView) {
		return ErrStale
	}
	defer s.mu.Unlock()

	if err != nil {
		return s.failLocked(ctxFullViewGen, err)
	}
	if s.resultGen != gen {
		return ErrStale
	}

	s.st.FullViewResult = result
	return nil
}

// ApplyStyle restyles the Single View result. A cached result for the
// current settings is returned without a request.
func (s *Session) ApplyStyle(ctx context.Context) error {
	s.mu.Lock()
	if s.st.Result == "" {
		s.st.Error = msgNeedSingleViewStyle
		s.mu.Unlock()
		return ErrNoResult
	}
	settings := s.st.Style
	key := settings.cacheKey()
	if cached, ok := s.cache[key]; ok {
		s.st.StyleResult = cached
		s.st.StyleResultID = settings.ID
		s.mu.Unlock()
		return nil
	}
	epoch, err := s.beginLocked(jobStyle)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.resultGen
	source := s.st.Result
	s.mu.Unlock()

	result, err := s.editResult(ctx, source, decal.StylePrompt(settings.ID, settings.Strength, settings.PreserveFinish))
	if !s.finish(epoch, jobStyle) {
		return ErrStale
	}
	defer s.mu.Unlock()

	if err != nil {
		return s.failLocked(ctxStylePackGen, err)
	}
	if s.resultGen != gen {
		return ErrStale
	}

	s.st.StyleResult = result
	s.st.StyleResultID = settings.ID
	s.cache[key] = result
	return nil
}

func (s *Session) editResult(ctx context.Context, source, prompt string) (string, error) {
	img, err := gemini.ParseDataURL(source, "image/png")
	if err != nil {
		return "", fmt.Errorf("read single view result: %w", err)
	}
	return s.studio.invoker.Call(ctx, gateway.ActionEditImage, s.studio.editPayload(img, prompt))
}

// StartOver clears the wizard. Language, constraint flags and style
// settings are kept; requests still running are dropped when they return.
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Error = ""
}

// Download returns the image shown on tab, named {kind}_{timestamp}.png.
func (s *Session) Download(tab Tab) (File, error) {
	s.mu.Lock()
	var source, kind string
	switch tab {
	case TabSingle:
		source, kind = s.st.Result, decal.KindSingleView
	case TabFull:
		source, kind = s.st.FullViewResult, decal.KindFullView
	case TabStyle:
		source, kind = s.st.StyleResult, decal.StyleKind(s.st.StyleResultID)
	default:
		s.mu.Unlock()
		return File{}, ErrInvalidTab
	}
	s.mu.Unlock()

	if source == "" {
		return File{}, ErrNothingToDownload
	}
	img, err := gemini.ParseDataURL(source, "image/png")
	if err != nil {
		return File{}, err
	}
	raw, err := img.PNG()
	if err != nil {
		return File{}, err
	}
	return File{
		Name:     decal.DownloadName(kind, s.studio.now()),
		MimeType: "image/png",
		Data:     raw,
	}, nil
}

func (s *Session) resetLocked() {
	keep := s.st
	s.st = initialState()
	s.st.Language = keep.Language
	s.st.PreserveFinish = keep.PreserveFinish
	s.st.AvoidZones = keep.AvoidZones
	s.st.Style = keep.Style
	s.st.refreshPrompts()

	s.clearCacheLocked()
	s.epoch++
	s.resultGen++
}

func (s *Session) setTypeLocked(t decal.HelmetType) {
	if t == s.st.HelmetType {
		return
	}
	s.st.resetOutputs()
	s.clearCacheLocked()
	s.resultGen++
	s.st.HelmetType = t
}

func (s *Session) clearCacheLocked() {
	clear(s.cache)
}

func (s *Session) beginLocked(j job) (uint64, error) {
	if s.runningLocked(j) {
		return 0, ErrBusy
	}
	s.setRunningLocked(j, true)
	s.st.Error = ""
	return s.epoch, nil
}

// finish retakes the lock after an upstream call and clears the job flag.
// It returns false, with the lock released, when the session was reset
// in the meantime.
func (s *Session) finish(epoch uint64, j job) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.studio.logger.Info("dropping stale response", "job", int(j))
		return false
	}
	s.setRunningLocked(j, false)
	return true
}

func (s *Session) failLocked(errContext string, err error) error {
	opErr := &OpError{Context: errContext, Err: err}
	s.st.Error = opErr.Error()
	s.studio.logger.Warn("studio request failed", "context", errContext, "err", err)
	return opErr
}

func (s *Session) runningLocked(j job) bool {
	switch j {
	case jobHelmet1:
		return s.st.Helmet1Status == StatusAnalyzing
	case jobHelmet2:
		return s.st.InFlight.Helmet2
	case jobSingleView:
		return s.st.InFlight.SingleView
	case jobFullView:
		return s.st.InFlight.FullView
	case jobStyle:
		return s.st.InFlight.Style
	}
	return false
}

func (s *Session) setRunningLocked(j job, v bool) {
	switch j {
	case jobHelmet1:
		if v {
			s.st.Helmet1Status = StatusAnalyzing
		}
	case jobHelmet2:
		s.st.InFlight.Helmet2 = v
	case jobSingleView:
		s.st.InFlight.SingleView = v
	case jobFullView:
		s.st.InFlight.FullView = v
	case jobStyle:
		s.st.InFlight.Style = v
	}
}
