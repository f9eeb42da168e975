package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/studio"
	"decal-transfer-studio/internal/telegram"
)

const callbackPrefix = "dt"

const strengthStep = 10

func cb(ownerID int64, parts ...string) string {
	return callbackPrefix + ":" + strconv.FormatInt(ownerID, 10) + ":" + strings.Join(parts, ":")
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, callbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This panel belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	chatID := q.Message.Chat.ID

	h.panels.Update(chatID, ownerID, func(p *panel) { p.MessageID = q.Message.MessageID })
	sess := h.sessions.Get(chatID, ownerID)
	st := sess.Snapshot()

	answer := "OK"
	var eventErr error

	switch action {
	case "menu":
		h.panels.Update(chatID, ownerID, func(p *panel) { p.Menu = arg })
	case "type":
		t, ok := decal.ParseHelmetType(arg)
		if !ok {
			eventErr = studio.ErrInvalidHelmetType
			break
		}
		eventErr = sess.ChangeHelmetType(t)
		if eventErr == nil {
			h.panels.Update(chatID, ownerID, func(p *panel) { p.Menu = menuMain })
		}
	case "lang":
		sess.ToggleLanguage()
	case "pf":
		sess.SetPreserveFinish(!st.PreserveFinish)
	case "az":
		sess.SetAvoidZones(!st.AvoidZones)
	case "tab":
		eventErr = sess.SetPromptTab(nextPromptTab(st.PromptTab))
	case "style":
		eventErr = sess.SetStyle(decal.StyleID(arg))
	case "str":
		delta, err := strconv.Atoi(arg)
		if err != nil {
			break
		}
		sess.SetStyleStrength(st.Style.Strength + delta)
	case "spf":
		sess.SetStylePreserveFinish(!st.Style.PreserveFinish)
	case "seed":
		sess.SetStyleLockSeed(!st.Style.LockSeed)
	case "clear2":
		sess.ClearHelmet2()
	case "reset":
		sess.StartOver()
		h.panels.Update(chatID, ownerID, func(p *panel) {
			p.Menu = menuMain
			p.AwaitingPrompt = false
		})
	case "dismiss":
		sess.ClearError()
	case "edit":
		h.panels.Update(chatID, ownerID, func(p *panel) { p.AwaitingPrompt = true })
		_ = h.tg.AnswerCallback(q.ID, "Send the edited prompt.", false)
		if st.EditedPrompt != "" {
			_ = h.tg.SendText(chatID, st.EditedPrompt)
		}
		_ = h.tg.SendText(chatID, "✏️ Edit the labeled lines above and send them back (/cancel to stop).")
		return h.renderPanel(chatID, ownerID)
	case "prompt":
		_ = h.tg.AnswerCallback(q.ID, "Sending the prompt…", false)
		return h.sendPrompt(chatID, ownerID)
	case "dl":
		_ = h.tg.AnswerCallback(q.ID, "Preparing the file…", false)
		return h.download(chatID, ownerID, studio.Tab(arg))
	case "retry":
		_ = h.tg.AnswerCallback(q.ID, "Analyzing…", false)
		_ = h.renderPanel(chatID, ownerID)
		h.report(chatID, sess.AnalyzeHelmet1(ctx))
		return h.renderPanel(chatID, ownerID)
	case "gen", "full", "apply":
		tab := map[string]studio.Tab{"gen": studio.TabSingle, "full": studio.TabFull, "apply": studio.TabStyle}[action]
		if tab == studio.TabStyle && st.Result != "" && sess.StyleCached() {
			answer = "Cached result"
		} else {
			answer = "Generating…"
		}
		_ = h.tg.AnswerCallback(q.ID, answer, false)
		_ = h.renderPanel(chatID, ownerID)
		return h.generate(ctx, chatID, ownerID, tab)
	}

	if eventErr != nil {
		_ = h.tg.AnswerCallback(q.ID, strings.TrimPrefix(describe(eventErr), "❌ "), true)
	} else {
		_ = h.tg.AnswerCallback(q.ID, answer, false)
	}
	return h.renderPanel(chatID, ownerID)
}

// renderPanel edits the panel message in place, falling back to a new one.
func (h *Handler) renderPanel(chatID, userID int64) error {
	p := h.panels.Get(chatID, userID)
	st := h.sessions.Get(chatID, userID).Snapshot()

	text := panelText(st, p, h.strategy)
	kb := panelKeyboard(userID, st, p)

	if p.MessageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, p.MessageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.panels.Update(chatID, userID, func(p *panel) { p.MessageID = msgID })
	return nil
}

func panelText(st studio.State, p panel, strategy studio.Strategy) string {
	lang := st.Language

	var b strings.Builder
	b.WriteString("🪖 Decal Transfer Studio\n\n")

	switch {
	case st.Helmet1 == nil:
		b.WriteString("Helmet 1: (none)\n")
	case st.Helmet1Status == studio.StatusAnalyzing:
		b.WriteString("Helmet 1: ⏳ analyzing…\n")
	case st.Helmet1Status == studio.StatusExtracted:
		b.WriteString("Helmet 1: ✅ decal extracted\n")
	case st.Helmet1Status == studio.StatusError:
		b.WriteString("Helmet 1: ❌ analysis failed\n")
	default:
		b.WriteString("Helmet 1: saved\n")
	}

	switch {
	case st.InFlight.Helmet2:
		b.WriteString("Helmet 2: ⏳ reading the type…\n")
	case st.Helmet2 != nil:
		b.WriteString("Helmet 2: ✅ photo\n")
	case strategy == studio.StrategyPlaceholder:
		b.WriteString("Helmet 2: (none, a blank template is used)\n")
	default:
		b.WriteString("Helmet 2: (none, a new helmet is rendered)\n")
	}

	typeLine := "Type: (not set)"
	if t := st.EffectiveType(); t != "" {
		typeLine = "Type: " + decal.HelmetTypeName(t, lang)
		if st.LockedType != "" {
			typeLine += " 🔒"
		}
	}
	if st.RecommendedType != "" && st.RecommendedType != st.EffectiveType() {
		typeLine += fmt.Sprintf(" (recommended: %s)", decal.HelmetTypeName(st.RecommendedType, lang))
	}
	b.WriteString(typeLine + "\n")

	b.WriteString(fmt.Sprintf("Language: %s, Prompt: %s\n", strings.ToUpper(string(lang)), promptTabName(st.PromptTab)))
	b.WriteString(fmt.Sprintf("Preserve finish: %s, Avoid zones: %s\n", onOff(st.PreserveFinish), onOff(st.AvoidZones)))
	b.WriteString(fmt.Sprintf("Style: %s %d%% (finish %s, seed %s)\n",
		styleName(st.Style.ID), st.Style.Strength, onOff(st.Style.PreserveFinish), onOff(st.Style.LockSeed)))
	b.WriteString(fmt.Sprintf("Results: Single %s, Full %s, Style %s\n",
		mark(st.Result), mark(st.FullViewResult), mark(st.StyleResult)))

	if running := runningJobs(st.InFlight); running != "" {
		b.WriteString("\n⏳ Running: " + running + "\n")
	}
	if st.Error != "" {
		b.WriteString("\n⚠️ " + st.Error + "\n")
	}

	switch {
	case p.AwaitingPrompt:
		b.WriteString("\n✏️ Send the edited prompt (/cancel to stop).\n")
	case st.Helmet1 == nil:
		b.WriteString("\n📷 Send the Helmet 1 photo.\n")
	case st.Helmet1Status == studio.StatusExtracted && st.Result == "":
		b.WriteString("\n🎨 Press Single View, or send the Helmet 2 photo first.\n")
	}

	if p.Menu == menuType && st.LockedType != "" {
		b.WriteString("\n🔒 The type comes from the Helmet 2 photo.\n")
	}

	return strings.TrimSpace(b.String())
}

func panelKeyboard(ownerID int64, st studio.State, p panel) telegram.InlineKeyboard {
	switch p.Menu {
	case menuType:
		return typeKeyboard(ownerID, st)
	case menuStyle:
		return styleKeyboard(ownerID, st)
	default:
		return mainKeyboard(ownerID, st)
	}
}

func mainKeyboard(ownerID int64, st studio.State) telegram.InlineKeyboard {
	typeLabel := "🪖 Type"
	if t := st.EffectiveType(); t != "" {
		typeLabel = "🪖 " + decal.HelmetTypeName(t, st.Language)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData(typeLabel, cb(ownerID, "menu", menuType)),
			tgbotapi.NewInlineKeyboardButtonData("🌐 "+strings.ToUpper(string(st.Language.Toggle())), cb(ownerID, "lang")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Finish: "+onOff(st.PreserveFinish), cb(ownerID, "pf")),
			tgbotapi.NewInlineKeyboardButtonData("Zones: "+onOff(st.AvoidZones), cb(ownerID, "az")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("Prompt: "+promptTabName(st.PromptTab), cb(ownerID, "tab")),
			tgbotapi.NewInlineKeyboardButtonData("📄 Show", cb(ownerID, "prompt")),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", cb(ownerID, "edit")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("🎨 Single View", cb(ownerID, "gen")),
			tgbotapi.NewInlineKeyboardButtonData("🧭 Full View", cb(ownerID, "full")),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("🖌 Style", cb(ownerID, "menu", menuStyle)),
			tgbotapi.NewInlineKeyboardButtonData("✨ Apply style", cb(ownerID, "apply")),
		},
	}

	var downloads []tgbotapi.InlineKeyboardButton
	if st.Result != "" {
		downloads = append(downloads, tgbotapi.NewInlineKeyboardButtonData("⬇ Single", cb(ownerID, "dl", string(studio.TabSingle))))
	}
	if st.FullViewResult != "" {
		downloads = append(downloads, tgbotapi.NewInlineKeyboardButtonData("⬇ Full", cb(ownerID, "dl", string(studio.TabFull))))
	}
	if st.StyleResult != "" {
		downloads = append(downloads, tgbotapi.NewInlineKeyboardButtonData("⬇ Style", cb(ownerID, "dl", string(studio.TabStyle))))
	}
	if len(downloads) > 0 {
		rows = append(rows, downloads)
	}

	var extra []tgbotapi.InlineKeyboardButton
	if st.Helmet1Status == studio.StatusError {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("🔁 Retry analysis", cb(ownerID, "retry")))
	}
	if st.Helmet2 != nil {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("✖ Clear Helmet 2", cb(ownerID, "clear2")))
	}
	if st.Error != "" {
		extra = append(extra, tgbotapi.NewInlineKeyboardButtonData("Dismiss", cb(ownerID, "dismiss")))
	}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("Start over", cb(ownerID, "reset")),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func typeKeyboard(ownerID int64, st studio.State) telegram.InlineKeyboard {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	current := st.EffectiveType()
	for _, opt := range decal.HelmetTypeOptions(st.Language) {
		label := opt.Name
		if opt.Key == string(current) {
			label = "✅ " + label
		} else if opt.Key == string(st.RecommendedType) {
			label = "⭐ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "type", opt.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", menuMain)),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func styleKeyboard(ownerID int64, st studio.State) telegram.InlineKeyboard {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, opt := range decal.StyleOptions() {
		label := opt.Name
		if opt.Key == string(st.Style.ID) {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "style", opt.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("−%d", strengthStep), cb(ownerID, "str", strconv.Itoa(-strengthStep))),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d%%", st.Style.Strength), cb(ownerID, "menu", menuStyle)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("+%d", strengthStep), cb(ownerID, "str", strconv.Itoa(strengthStep))),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Finish: "+onOff(st.Style.PreserveFinish), cb(ownerID, "spf")),
			tgbotapi.NewInlineKeyboardButtonData("Seed: "+onOff(st.Style.LockSeed), cb(ownerID, "seed")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("✨ Apply", cb(ownerID, "apply")),
			tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", menuMain)),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// resultFor returns the image shown on tab and its caption.
func resultFor(st studio.State, tab studio.Tab) (string, string) {
	switch tab {
	case studio.TabFull:
		return st.FullViewResult, "✅ Full View"
	case studio.TabStyle:
		return st.StyleResult, fmt.Sprintf("✅ Style: %s %d%%", styleName(st.StyleResultID), st.Style.Strength)
	default:
		caption := "✅ Single View"
		if t := st.EffectiveType(); t != "" {
			caption += ": " + decal.HelmetTypeName(t, st.Language)
		}
		return st.Result, caption + " (" + strings.ToLower(promptTabName(st.PromptTypeUsed)) + " prompt)"
	}
}

func nextPromptTab(tab studio.PromptTab) studio.PromptTab {
	if tab == studio.PromptPro {
		return studio.PromptSimple
	}
	return studio.PromptPro
}

func promptTabName(tab studio.PromptTab) string {
	if tab == studio.PromptPro {
		return "Pro"
	}
	return "Simple"
}

func styleName(id decal.StyleID) string {
	for _, opt := range decal.StyleOptions() {
		if opt.Key == string(id) {
			return opt.Name
		}
	}
	return string(id)
}

func runningJobs(f studio.InFlight) string {
	var jobs []string
	if f.Helmet2 {
		jobs = append(jobs, "helmet 2")
	}
	if f.SingleView {
		jobs = append(jobs, "single view")
	}
	if f.FullView {
		jobs = append(jobs, "full view")
	}
	if f.Style {
		jobs = append(jobs, "style")
	}
	return strings.Join(jobs, ", ")
}

func mark(v string) string {
	if v == "" {
		return "⬜"
	}
	return "✅"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
