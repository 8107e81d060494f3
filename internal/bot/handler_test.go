package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tunestream/musicbot/internal/domain"
)

type fakeChat struct {
	sent     []string
	edits    []string
	lists    [][]ListItem
	audio    []AudioMessage
	deleted  []int
	sendErr  error
	audioErr error
	nextID   int
}

func (c *fakeChat) SendMessage(_ int64, text string) (int, error) {
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.sent = append(c.sent, text)
	c.nextID++
	return c.nextID, nil
}

func (c *fakeChat) EditMessage(_ int64, _ int, text string) error {
	c.edits = append(c.edits, text)
	return nil
}

func (c *fakeChat) EditMessageWithList(_ int64, _ int, text string, items []ListItem) error {
	c.edits = append(c.edits, text)
	c.lists = append(c.lists, items)
	return nil
}

func (c *fakeChat) SendAudio(_ int64, audio AudioMessage) error {
	if c.audioErr != nil {
		return c.audioErr
	}
	c.audio = append(c.audio, audio)
	return nil
}

func (c *fakeChat) DeleteMessage(_ int64, messageID int) error {
	c.deleted = append(c.deleted, messageID)
	return nil
}

type fakeSearcher struct {
	set     domain.ResultSet
	ok      bool
	queries []string
}

func (s *fakeSearcher) Search(_ context.Context, query string, _ int) (domain.ResultSet, bool) {
	s.queries = append(s.queries, query)
	return s.set, s.ok
}

type fakeFetcher struct {
	result domain.FetchResult
	err    error
	urls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, track domain.Track) (domain.FetchResult, error) {
	f.urls = append(f.urls, track.SourceURL)
	if f.err != nil {
		return domain.FetchResult{}, f.err
	}
	return f.result, nil
}

type allowAll struct{}

func (allowAll) Admit(int64) bool { return true }

type denyAll struct{}

func (denyAll) Admit(int64) bool { return false }

type memSessions struct {
	byChat map[int64]domain.Session
}

func newMemSessions() *memSessions { return &memSessions{byChat: map[int64]domain.Session{}} }

func (m *memSessions) Put(s domain.Session) { m.byChat[s.ChatID] = s }

func (m *memSessions) Get(chatID int64) (domain.Session, bool) {
	s, ok := m.byChat[chatID]
	return s, ok
}

func resultSet(tracks ...domain.Track) domain.ResultSet {
	return domain.ResultSet{Query: "q", Tracks: tracks, CreatedAt: time.Now()}
}

func newTestHandler(chat *fakeChat, searcher Searcher, fetcher Fetcher, admitter Admitter, sessions SessionStore) *Handler {
	h := NewHandler(chat, searcher, fetcher, admitter, sessions, 3)
	h.randIndex = func(int) int { return 0 }
	h.removeFile = func(string) error { return nil }
	return h
}

func TestFindRendersSelectionList(t *testing.T) {
	chat := &fakeChat{}
	searcher := &fakeSearcher{ok: true, set: resultSet(
		domain.Track{Title: "Yellow", SourceURL: "u1", DurationSeconds: 267, Artist: "Coldplay"},
		domain.Track{Title: "Fix You", SourceURL: "u2", DurationSeconds: 295, Artist: "Coldplay"},
	)}
	sessions := newMemSessions()
	h := newTestHandler(chat, searcher, &fakeFetcher{}, allowAll{}, sessions)

	h.OnTextCommand(context.Background(), 7, 100, "найди пожалуйста coldplay")

	if len(searcher.queries) != 1 || searcher.queries[0] != "coldplay" {
		t.Fatalf("filler words must be stripped, searched %v", searcher.queries)
	}
	if len(chat.lists) != 1 {
		t.Fatalf("expected one keyboard, got %d", len(chat.lists))
	}
	items := chat.lists[0]
	if items[0].Label != "1. Yellow (04:27)" {
		t.Fatalf("unexpected label: %q", items[0].Label)
	}
	if items[1].Data != "download_1" {
		t.Fatalf("unexpected callback data: %q", items[1].Data)
	}

	session, ok := sessions.Get(100)
	if !ok || session.RequesterID != 7 {
		t.Fatalf("session must record the requester, got %+v ok=%v", session, ok)
	}
}

func TestFindWithoutQueryAsksForOne(t *testing.T) {
	chat := &fakeChat{}
	searcher := &fakeSearcher{}
	h := newTestHandler(chat, searcher, &fakeFetcher{}, allowAll{}, newMemSessions())

	h.OnTextCommand(context.Background(), 7, 100, "найди")

	if len(searcher.queries) != 0 {
		t.Fatal("an empty query must not reach the searcher")
	}
	if len(chat.sent) != 1 || !strings.Contains(chat.sent[0], "не указано") {
		t.Fatalf("expected a usage hint, got %v", chat.sent)
	}
}

func TestFindDeniedByRateLimit(t *testing.T) {
	chat := &fakeChat{}
	searcher := &fakeSearcher{ok: true}
	h := newTestHandler(chat, searcher, &fakeFetcher{}, denyAll{}, newMemSessions())

	h.OnTextCommand(context.Background(), 7, 100, "найди coldplay")

	if len(searcher.queries) != 0 {
		t.Fatal("a denied requester must not reach the searcher")
	}
	if len(chat.sent) != 1 || !strings.Contains(chat.sent[0], "Слишком много запросов") {
		t.Fatalf("expected the rate-limit reply, got %v", chat.sent)
	}
}

func TestFindNoResults(t *testing.T) {
	chat := &fakeChat{}
	h := newTestHandler(chat, &fakeSearcher{ok: false}, &fakeFetcher{}, allowAll{}, newMemSessions())

	h.OnTextCommand(context.Background(), 7, 100, "найди abcxyz")

	if len(chat.edits) != 1 || !strings.Contains(chat.edits[0], "Не найдено") {
		t.Fatalf("expected the no-results edit, got %v", chat.edits)
	}
}

func TestUnrelatedMessagesAreIgnored(t *testing.T) {
	chat := &fakeChat{}
	searcher := &fakeSearcher{ok: true}
	h := newTestHandler(chat, searcher, &fakeFetcher{}, allowAll{}, newMemSessions())

	for _, text := range []string{"привет", "how are you", "", "skип"} {
		h.OnTextCommand(context.Background(), 7, 100, text)
	}
	if len(chat.sent)+len(chat.edits) != 0 || len(searcher.queries) != 0 {
		t.Fatal("non-command messages must be ignored silently")
	}
}

func TestSelectionDeliversAudio(t *testing.T) {
	chat := &fakeChat{}
	fetcher := &fakeFetcher{result: domain.FetchResult{Path: "/tmp/x/track.mp3", SizeBytes: 1000}}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results: resultSet(
			domain.Track{Title: "Yellow", SourceURL: "https://sc/u1", DurationSeconds: 267, Artist: "Coldplay"},
		),
	})
	h := newTestHandler(chat, &fakeSearcher{}, fetcher, allowAll{}, sessions)

	h.OnSelection(context.Background(), 7, 100, 55, "download_0")

	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://sc/u1" {
		t.Fatalf("expected a fetch for the picked track, got %v", fetcher.urls)
	}
	if len(chat.audio) != 1 {
		t.Fatalf("expected one audio message, got %d", len(chat.audio))
	}
	audio := chat.audio[0]
	if audio.Title != "Yellow" || audio.Performer != "Coldplay" {
		t.Fatalf("unexpected metadata: %+v", audio)
	}
	if !strings.Contains(audio.Caption, "04:27") {
		t.Fatalf("caption must carry the duration, got %q", audio.Caption)
	}
	if len(chat.deleted) != 1 || chat.deleted[0] != 55 {
		t.Fatalf("keyboard message must be deleted, got %v", chat.deleted)
	}
}

func TestSelectionFromDifferentRequesterIsStale(t *testing.T) {
	chat := &fakeChat{}
	fetcher := &fakeFetcher{}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results:     resultSet(domain.Track{Title: "Yellow", SourceURL: "https://sc/u1"}),
	})
	h := newTestHandler(chat, &fakeSearcher{}, fetcher, allowAll{}, sessions)

	h.OnSelection(context.Background(), 8, 100, 55, "download_0")

	if len(fetcher.urls) != 0 {
		t.Fatal("another requester must not trigger a fetch")
	}
	if len(chat.edits) != 1 || !strings.Contains(chat.edits[0], "устарели") {
		t.Fatalf("expected the stale-session reply, got %v", chat.edits)
	}
}

func TestSelectionWithoutSessionIsStale(t *testing.T) {
	chat := &fakeChat{}
	h := newTestHandler(chat, &fakeSearcher{}, &fakeFetcher{}, allowAll{}, newMemSessions())

	h.OnSelection(context.Background(), 7, 100, 55, "download_0")

	if len(chat.edits) != 1 || !strings.Contains(chat.edits[0], "устарели") {
		t.Fatalf("expected the stale-session reply, got %v", chat.edits)
	}
}

func TestSelectionIndexOutOfRange(t *testing.T) {
	chat := &fakeChat{}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results:     resultSet(domain.Track{Title: "Yellow", SourceURL: "https://sc/u1"}),
	})
	h := newTestHandler(chat, &fakeSearcher{}, &fakeFetcher{}, allowAll{}, sessions)

	h.OnSelection(context.Background(), 7, 100, 55, "download_5")

	if len(chat.edits) != 1 || !strings.Contains(chat.edits[0], "Неверный выбор") {
		t.Fatalf("expected the wrong-pick reply, got %v", chat.edits)
	}
}

func TestSelectionFetchFailure(t *testing.T) {
	chat := &fakeChat{}
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results:     resultSet(domain.Track{Title: "Yellow", SourceURL: "https://sc/u1"}),
	})
	h := newTestHandler(chat, &fakeSearcher{}, fetcher, allowAll{}, sessions)

	h.OnSelection(context.Background(), 7, 100, 55, "download_0")

	last := chat.edits[len(chat.edits)-1]
	if !strings.Contains(last, "Не удалось скачать") {
		t.Fatalf("expected the fetch-failure reply, got %q", last)
	}
	if len(chat.audio) != 0 {
		t.Fatal("no audio must be sent after a failed fetch")
	}
}

func TestSelectionDeliveryFailureRemovesFile(t *testing.T) {
	chat := &fakeChat{audioErr: errors.New("payload too large")}
	fetcher := &fakeFetcher{result: domain.FetchResult{Path: "/tmp/x/track.mp3"}}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results:     resultSet(domain.Track{Title: "Yellow", SourceURL: "https://sc/u1"}),
	})
	h := newTestHandler(chat, &fakeSearcher{}, fetcher, allowAll{}, sessions)

	var removed []string
	h.removeFile = func(path string) error {
		removed = append(removed, path)
		return nil
	}

	h.OnSelection(context.Background(), 7, 100, 55, "download_0")

	last := chat.edits[len(chat.edits)-1]
	if !strings.Contains(last, "Ошибка отправки") {
		t.Fatalf("expected the delivery-failure reply, got %q", last)
	}
	if len(removed) != 1 || removed[0] != "/tmp/x/track.mp3" {
		t.Fatalf("local file must be removed even when delivery fails, got %v", removed)
	}
}

func TestRandomDeliversSingleTrack(t *testing.T) {
	chat := &fakeChat{}
	searcher := &fakeSearcher{ok: true, set: resultSet(
		domain.Track{Title: "Deep Cut", SourceURL: "https://sc/r1", DurationSeconds: 180, Artist: "DJ"},
	)}
	fetcher := &fakeFetcher{result: domain.FetchResult{Path: "/tmp/r/cut.mp3"}}
	h := newTestHandler(chat, searcher, fetcher, allowAll{}, newMemSessions())

	h.OnTextCommand(context.Background(), 7, 100, "рандом")

	if len(searcher.queries) != 1 || searcher.queries[0] != randomSearches[0] {
		t.Fatalf("expected a catalog genre query, got %v", searcher.queries)
	}
	if len(chat.audio) != 1 {
		t.Fatalf("expected one audio message, got %d", len(chat.audio))
	}
	if len(chat.deleted) != 1 {
		t.Fatal("status message must be deleted after delivery")
	}
}

func TestMetadataTruncation(t *testing.T) {
	chat := &fakeChat{}
	long := strings.Repeat("я", 80)
	fetcher := &fakeFetcher{result: domain.FetchResult{Path: "/tmp/x/t.mp3"}}
	sessions := newMemSessions()
	sessions.Put(domain.Session{
		ChatID:      100,
		RequesterID: 7,
		Results:     resultSet(domain.Track{Title: long, SourceURL: "https://sc/u1", Artist: long}),
	})
	h := newTestHandler(chat, &fakeSearcher{}, fetcher, allowAll{}, sessions)

	h.OnSelection(context.Background(), 7, 100, 55, "download_0")

	audio := chat.audio[0]
	if got := len([]rune(audio.Title)); got != 67 {
		t.Fatalf("title must be cut to 64 runes plus ellipsis, got %d", got)
	}
	if !strings.HasSuffix(audio.Title, "...") {
		t.Fatalf("expected an ellipsis, got %q", audio.Title)
	}
}
