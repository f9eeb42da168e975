package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"decal-transfer-studio/internal/decal"
	"decal-transfer-studio/internal/gemini"
	"decal-transfer-studio/internal/mediagroup"
	"decal-transfer-studio/internal/studio"
	"decal-transfer-studio/internal/telegram"
)

// Messenger is the part of the Telegram client the handlers use.
type Messenger interface {
	SendTyping(chatID int64)
	SendUploading(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.InlineKeyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.InlineKeyboard) error
	AnswerCallback(callbackID string, text string, alert bool) error
	SendPhotoDataURL(chatID int64, dataURL string, caption string) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
	DownloadImage(ctx context.Context, fileID string) (gemini.ImageInput, error)
}

type Options struct {
	Telegram Messenger
	Sessions *studio.Store
	// Strategy is only used to explain what happens without a Helmet 2 photo.
	Strategy studio.Strategy
	Logger   *slog.Logger
}

type Handler struct {
	tg         Messenger
	sessions   *studio.Store
	panels     *panelStore
	strategy   studio.Strategy
	logger     *slog.Logger
	aggregator *mediagroup.Aggregator
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = studio.StrategyImagen
	}

	return &Handler{
		tg:       opts.Telegram,
		sessions: opts.Sessions,
		panels:   newPanelStore(),
		strategy: strategy,
		logger:   logger,
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

// SweepPanels forgets panel messages idle longer than ttl.
func (h *Handler) SweepPanels(ttl time.Duration) int {
	return h.panels.Sweep(time.Now(), ttl)
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if fileID := imageFileID(msg); fileID != "" {
		return h.handlePhoto(ctx, chatID, userID, msg, fileID)
	}

	if msg.Text != "" {
		return h.handleText(chatID, userID, msg.Text)
	}

	return nil
}

func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	if err := h.processAlbum(ctx, group); err != nil {
		h.logger.Error("media group processing failed", "chat_id", group.ChatID, "err", err)
	}
}

const helpText = "🪖 Decal Transfer Studio\n\n" +
	"1. Send the Helmet 1 photo: the decal is read into a prompt.\n" +
	"2. Send the Helmet 2 photo (optional): its type is detected and locked.\n" +
	"   Or send both as one album, Helmet 1 first.\n" +
	"3. Pick a type if needed and press 🎨 Single View.\n\n" +
	"Commands:\n" +
	"/start - Show the panel\n" +
	"/help - This help\n" +
	"/new - Start over\n" +
	"/prompt - Show the active prompt\n" +
	"/pro - Switch between simple and pro prompt\n" +
	"/lang [en|vi] - Switch the prompt language\n" +
	"/type <half-face|open-face|fullface|cross-mx> - Set the Helmet 2 type\n" +
	"/generate - Single View\n" +
	"/full - Full View (front, side, back)\n" +
	"/cancel - Stop waiting for a prompt edit\n\n" +
	"Caption a photo with \"helmet 1\" or \"helmet 2\" to pick the slot."

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		_ = h.tg.SendText(chatID, helpText)
		h.panels.Reset(chatID, userID)
		return h.renderPanel(chatID, userID)
	case "help":
		return h.tg.SendText(chatID, helpText)
	case "new", "reset":
		h.sessions.Get(chatID, userID).StartOver()
		h.panels.Reset(chatID, userID)
		_ = h.tg.SendText(chatID, "✅ Started over. Send the Helmet 1 photo.")
		return h.renderPanel(chatID, userID)
	case "cancel":
		h.panels.Update(chatID, userID, func(p *panel) { p.AwaitingPrompt = false })
		return h.tg.SendText(chatID, "OK.")
	case "prompt":
		return h.sendPrompt(chatID, userID)
	case "pro":
		sess := h.sessions.Get(chatID, userID)
		_ = sess.SetPromptTab(nextPromptTab(sess.Snapshot().PromptTab))
		return h.renderPanel(chatID, userID)
	case "lang":
		sess := h.sessions.Get(chatID, userID)
		if lang, ok := decal.ParseLanguage(args); !ok || lang != sess.Snapshot().Language {
			sess.ToggleLanguage()
		}
		return h.renderPanel(chatID, userID)
	case "type":
		t, ok := helmetTypeIn(args)
		if !ok {
			return h.tg.SendText(chatID, "❌ Unknown type. Use: half-face, open-face, fullface, cross-mx.")
		}
		h.report(chatID, h.sessions.Get(chatID, userID).ChangeHelmetType(t))
		return h.renderPanel(chatID, userID)
	case "generate":
		return h.generate(ctx, chatID, userID, studio.TabSingle)
	case "full":
		return h.generate(ctx, chatID, userID, studio.TabFull)
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

func (h *Handler) handleText(chatID int64, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	p := h.panels.Get(chatID, userID)
	sess := h.sessions.Get(chatID, userID)

	if p.AwaitingPrompt || decal.LooksEncoded(text) {
		sess.EditPrompt(text)
		h.panels.Update(chatID, userID, func(p *panel) { p.AwaitingPrompt = false })
		_ = h.tg.SendText(chatID, "✅ Prompt updated.")
		return h.renderPanel(chatID, userID)
	}

	if t, ok := helmetTypeIn(text); ok {
		h.report(chatID, sess.ChangeHelmetType(t))
		return h.renderPanel(chatID, userID)
	}

	return h.tg.SendText(chatID, "📷 Send a helmet photo, or use /help.")
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, userID int64, msg *tgbotapi.Message, fileID string) error {
	if msg.MediaGroupID != "" && h.aggregator != nil {
		h.aggregator.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			Username:     msg.From.UserName,
			MediaGroupID: msg.MediaGroupID,
			MessageID:    msg.MessageID,
			Caption:      msg.Caption,
			FileID:       fileID,
		})
		return nil
	}

	h.tg.SendTyping(chatID)
	img, err := h.tg.DownloadImage(ctx, fileID)
	if err != nil {
		h.logger.Error("photo download failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, "❌ Could not download the photo.")
	}

	slot := choosePhotoSlot(msg.Caption, h.sessions.Get(chatID, userID).Snapshot())
	return h.applyPhoto(ctx, chatID, userID, slot, img, msg.Caption)
}

func (h *Handler) processAlbum(ctx context.Context, group mediagroup.Group) error {
	ids := group.FileIDs
	if len(ids) == 0 {
		return nil
	}
	extra := len(ids) > 2
	if extra {
		ids = ids[:2]
	}

	h.tg.SendTyping(group.ChatID)

	images := make([]gemini.ImageInput, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fileID := range ids {
		eg.Go(func() error {
			img, err := h.tg.DownloadImage(egCtx, fileID)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		h.logger.Error("album download failed", "chat_id", group.ChatID, "err", err)
		return h.tg.SendText(group.ChatID, "❌ Could not download the photos.")
	}

	if len(images) == 1 {
		slot := choosePhotoSlot(group.Caption, h.sessions.Get(group.ChatID, group.UserID).Snapshot())
		return h.applyPhoto(ctx, group.ChatID, group.UserID, slot, images[0], group.Caption)
	}

	if extra {
		_ = h.tg.SendText(group.ChatID, "ℹ️ Only the first two photos are used: Helmet 1, then Helmet 2.")
	}
	if err := h.applyPhoto(ctx, group.ChatID, group.UserID, slotHelmet1, images[0], group.Caption); err != nil {
		return err
	}
	return h.applyPhoto(ctx, group.ChatID, group.UserID, slotHelmet2, images[1], "")
}

func (h *Handler) applyPhoto(ctx context.Context, chatID, userID int64, slot photoSlot, img gemini.ImageInput, caption string) error {
	sess := h.sessions.Get(chatID, userID)
	h.panels.Update(chatID, userID, func(p *panel) { p.AwaitingPrompt = false })

	if slot == slotHelmet2 {
		_ = h.tg.SendText(chatID, "🔍 Reading the Helmet 2 type…")
		h.report(chatID, sess.SelectHelmet2(ctx, img))
		return h.renderPanel(chatID, userID)
	}

	_ = h.tg.SendText(chatID, "🔍 Reading the Helmet 1 decal…")
	err := sess.SelectHelmet1(ctx, img)
	h.report(chatID, err)
	if err == nil {
		if t, ok := helmetTypeIn(caption); ok {
			h.report(chatID, sess.ChangeHelmetType(t))
		}
	}
	return h.renderPanel(chatID, userID)
}

// generate runs one of the three image jobs and posts its result.
func (h *Handler) generate(ctx context.Context, chatID, userID int64, tab studio.Tab) error {
	sess := h.sessions.Get(chatID, userID)
	_ = sess.SetActiveTab(tab)
	h.tg.SendUploading(chatID)

	var err error
	switch tab {
	case studio.TabFull:
		err = sess.GenerateFullView(ctx)
	case studio.TabStyle:
		err = sess.ApplyStyle(ctx)
	default:
		err = sess.GenerateSingleView(ctx)
	}
	if err != nil {
		h.report(chatID, err)
		return h.renderPanel(chatID, userID)
	}

	st := sess.Snapshot()
	if dataURL, caption := resultFor(st, tab); dataURL != "" {
		if err := h.tg.SendPhotoDataURL(chatID, dataURL, caption); err != nil {
			h.logger.Error("result upload failed", "chat_id", chatID, "tab", tab, "err", err)
			_ = h.tg.SendText(chatID, "❌ Could not send the image. Use ⬇ to download it.")
		}
	}
	return h.renderPanel(chatID, userID)
}

func (h *Handler) download(chatID, userID int64, tab studio.Tab) error {
	sess := h.sessions.Get(chatID, userID)
	_ = sess.SetActiveTab(tab)
	file, err := sess.Download(tab)
	if err != nil {
		h.report(chatID, err)
		return nil
	}
	h.tg.SendUploading(chatID)
	return h.tg.SendDocument(chatID, file.Name, file.Data, "")
}

func (h *Handler) sendPrompt(chatID, userID int64) error {
	st := h.sessions.Get(chatID, userID).Snapshot()
	prompt := st.Brief(st.PromptTab)
	if strings.TrimSpace(prompt) == "" {
		if st.PromptTab == studio.PromptPro {
			return h.tg.SendText(chatID, "No pro prompt yet: it needs an analyzed Helmet 1 and a helmet type.")
		}
		return h.tg.SendText(chatID, "No prompt yet: send the Helmet 1 photo first.")
	}
	return h.tg.SendText(chatID, prompt)
}

// report tells the user why an event did not go through.
func (h *Handler) report(chatID int64, err error) {
	if err == nil {
		return
	}
	if text := describe(err); text != "" {
		_ = h.tg.SendText(chatID, text)
	}
}

func describe(err error) string {
	var opErr *studio.OpError
	switch {
	case err == nil, errors.Is(err, studio.ErrStale):
		return ""
	case errors.As(err, &opErr):
		return "❌ " + opErr.Error()
	case errors.Is(err, studio.ErrBusy):
		return "⏳ Already running, please wait."
	case errors.Is(err, studio.ErrHelmetTypeLocked):
		return "🔒 The type comes from the Helmet 2 photo. Clear Helmet 2 to pick another one."
	case errors.Is(err, studio.ErrNoHelmet1):
		return "📷 Send the Helmet 1 photo first."
	case errors.Is(err, studio.ErrHelmet1NotReady):
		return "🔍 Helmet 1 is not analyzed yet. Wait for the analysis or tap 🔁 Retry analysis."
	case errors.Is(err, studio.ErrNoHelmetType):
		return "Please select a Helmet 2 type."
	case errors.Is(err, studio.ErrNoResult):
		return "Please generate a Single View result first."
	case errors.Is(err, studio.ErrNothingToDownload):
		return "Nothing to download yet."
	default:
		return "❌ " + err.Error()
	}
}

func imageFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID
	}
	return ""
}
