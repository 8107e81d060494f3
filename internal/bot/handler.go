// Package bot contains the chat-facing glue: command parsing, status
// messages, selection keyboards and audio delivery. The heavy lifting lives
// in the search and fetch packages; everything here is presentation and
// session bookkeeping.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"tunestream/musicbot/internal/domain"
	"tunestream/musicbot/internal/metrics"
)

// selectionPrefix tags callback data carrying a candidate index.
const selectionPrefix = "download_"

const metadataRuneLimit = 64

type Searcher interface {
	Search(ctx context.Context, query string, limit int) (domain.ResultSet, bool)
}

type Fetcher interface {
	Fetch(ctx context.Context, track domain.Track) (domain.FetchResult, error)
}

type Admitter interface {
	Admit(requesterID int64) bool
}

type SessionStore interface {
	Put(session domain.Session)
	Get(chatID int64) (domain.Session, bool)
}

// ListItem is one selectable row of a rendered result list.
type ListItem struct {
	Label string
	Data  string
}

// AudioMessage is a local audio file plus its display metadata.
type AudioMessage struct {
	Path      string
	Title     string
	Performer string
	Caption   string
}

// ChatSession is the transport the handler speaks through. Implementations
// render these calls as real chat messages.
type ChatSession interface {
	SendMessage(chatID int64, text string) (messageID int, err error)
	EditMessage(chatID int64, messageID int, text string) error
	EditMessageWithList(chatID int64, messageID int, text string, items []ListItem) error
	SendAudio(chatID int64, audio AudioMessage) error
	DeleteMessage(chatID int64, messageID int) error
}

type Handler struct {
	chat     ChatSession
	searcher Searcher
	fetcher  Fetcher
	admitter Admitter
	sessions SessionStore
	limit    int

	// Hooks for tests.
	randIndex  func(n int) int
	removeFile func(path string) error
}

func NewHandler(chat ChatSession, searcher Searcher, fetcher Fetcher, admitter Admitter, sessions SessionStore, resultLimit int) *Handler {
	if resultLimit <= 0 {
		resultLimit = 3
	}
	return &Handler{
		chat:       chat,
		searcher:   searcher,
		fetcher:    fetcher,
		admitter:   admitter,
		sessions:   sessions,
		limit:      resultLimit,
		randIndex:  rand.IntN,
		removeFile: os.Remove,
	}
}

// OnTextCommand handles a free-text or slash command. Messages that are not
// addressed to the bot are ignored without a reply.
func (h *Handler) OnTextCommand(ctx context.Context, requesterID, chatID int64, rawText string) {
	text := strings.TrimSpace(rawText)
	lowered := strings.ToLower(text)

	switch {
	case lowered == "/start":
		metrics.CommandsTotal.WithLabelValues("start").Inc()
		if _, err := h.chat.SendMessage(chatID, msgHelp); err != nil {
			slog.Warn("help reply failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		}

	case strings.HasPrefix(lowered, "найди"):
		h.handleFind(ctx, requesterID, chatID, extractFindQuery(lowered, "найди"))

	case strings.HasPrefix(lowered, "/find"):
		h.handleFind(ctx, requesterID, chatID, extractFindQuery(lowered, "/find"))

	case lowered == "рандом" || lowered == "/random":
		h.handleRandom(ctx, requesterID, chatID)
	}
}

func (h *Handler) handleFind(ctx context.Context, requesterID, chatID int64, query string) {
	metrics.CommandsTotal.WithLabelValues("find").Inc()

	if query == "" {
		h.send(chatID, msgEmptyQuery)
		return
	}
	if !h.admit(requesterID, chatID) {
		return
	}

	statusID, err := h.chat.SendMessage(chatID, fmt.Sprintf(msgSearching, query))
	if err != nil {
		slog.Warn("status message failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return
	}

	set, ok := h.searcher.Search(ctx, query, h.limit)
	if !ok {
		h.edit(chatID, statusID, fmt.Sprintf(msgNoResults, query))
		return
	}

	h.sessions.Put(domain.Session{
		ChatID:      chatID,
		RequesterID: requesterID,
		Results:     set,
		CreatedAt:   time.Now(),
	})

	items := make([]ListItem, 0, len(set.Tracks))
	for i, track := range set.Tracks {
		items = append(items, ListItem{
			Label: buttonLabel(i+1, track.Title, track.DurationSeconds),
			Data:  selectionPrefix + strconv.Itoa(i),
		})
	}
	if err := h.chat.EditMessageWithList(chatID, statusID, msgPickTrack, items); err != nil {
		slog.Warn("result list failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

func (h *Handler) handleRandom(ctx context.Context, requesterID, chatID int64) {
	metrics.CommandsTotal.WithLabelValues("random").Inc()

	if !h.admit(requesterID, chatID) {
		return
	}

	statusID, err := h.chat.SendMessage(chatID, msgSearchingRandom)
	if err != nil {
		slog.Warn("status message failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return
	}

	query := randomSearches[h.randIndex(len(randomSearches))]
	set, ok := h.searcher.Search(ctx, query, 1)
	if !ok || len(set.Tracks) == 0 {
		h.edit(chatID, statusID, msgNoRandomTrack)
		return
	}
	track := set.Tracks[0]

	result, err := h.fetcher.Fetch(ctx, track)
	if err != nil {
		slog.Warn("random fetch failed", slog.String("url", track.SourceURL), slog.String("error", err.Error()))
		h.edit(chatID, statusID, fmt.Sprintf(msgFetchFailed, track.Title))
		return
	}

	if err := h.deliver(chatID, track, result); err != nil {
		h.edit(chatID, statusID, msgDeliverFailed)
		return
	}
	if err := h.chat.DeleteMessage(chatID, statusID); err != nil {
		slog.Debug("status cleanup failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// OnSelection handles a button press on a previously rendered result list.
// Only the requester who ran the search may pick from it; anyone else gets
// the same stale-session reply as an expired keyboard.
func (h *Handler) OnSelection(ctx context.Context, requesterID, chatID int64, messageID int, data string) {
	index, err := parseSelection(data)
	if err != nil {
		slog.Warn("unparseable selection", slog.String("data", data))
		return
	}

	session, ok := h.sessions.Get(chatID)
	if !ok || session.RequesterID != requesterID {
		h.edit(chatID, messageID, msgStaleSession)
		return
	}
	if index < 0 || index >= len(session.Results.Tracks) {
		h.edit(chatID, messageID, msgWrongPick)
		return
	}
	track := session.Results.Tracks[index]

	h.edit(chatID, messageID, fmt.Sprintf(msgDownloading, track.Title, FormatDuration(track.DurationSeconds)))

	result, err := h.fetcher.Fetch(ctx, track)
	if err != nil {
		slog.Warn("fetch failed", slog.String("url", track.SourceURL), slog.String("error", err.Error()))
		h.edit(chatID, messageID, fmt.Sprintf(msgFetchFailed, track.Title))
		return
	}

	if err := h.deliver(chatID, track, result); err != nil {
		h.edit(chatID, messageID, msgDeliverFailed)
		return
	}
	if err := h.chat.DeleteMessage(chatID, messageID); err != nil {
		slog.Debug("keyboard cleanup failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// deliver hands the fetched file to the transport and removes the local copy
// whether or not delivery succeeded. The scratch directory sweep would catch
// it anyway; removing eagerly just frees the space sooner.
func (h *Handler) deliver(chatID int64, track domain.Track, result domain.FetchResult) error {
	defer func() {
		if err := h.removeFile(result.Path); err != nil && !os.IsNotExist(err) {
			slog.Debug("local file cleanup failed", slog.String("path", result.Path), slog.String("error", err.Error()))
		}
	}()

	title := track.Title
	if title == "" {
		title = unknownTrackTitle
	}
	performer := track.Artist
	if performer == "" || performer == "unknown" {
		performer = unknownArtist
	}

	audio := AudioMessage{
		Path:      result.Path,
		Title:     truncateRunes(title, metadataRuneLimit),
		Performer: truncateRunes(performer, metadataRuneLimit),
		Caption: fmt.Sprintf("🎵 %s\n⏱️ %s\n\n%s",
			title, FormatDuration(track.DurationSeconds), wishes[h.randIndex(len(wishes))]),
	}
	if err := h.chat.SendAudio(chatID, audio); err != nil {
		slog.Warn("audio delivery failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (h *Handler) admit(requesterID, chatID int64) bool {
	if h.admitter.Admit(requesterID) {
		return true
	}
	metrics.AdmissionDeniedTotal.Inc()
	h.send(chatID, msgRateLimited)
	return false
}

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.chat.SendMessage(chatID, text); err != nil {
		slog.Warn("send failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

func (h *Handler) edit(chatID int64, messageID int, text string) {
	if err := h.chat.EditMessage(chatID, messageID, text); err != nil {
		slog.Warn("edit failed", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

func parseSelection(data string) (int, error) {
	raw, ok := strings.CutPrefix(data, selectionPrefix)
	if !ok {
		return 0, fmt.Errorf("bot: unexpected callback data %q", data)
	}
	return strconv.Atoi(raw)
}
