package notification

import (
	"context"
	stdErrors "errors"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/anilist-discord-bot-go/internal/domain"
	"github.com/kapu/anilist-discord-bot-go/internal/service/cache"
	"github.com/kapu/anilist-discord-bot-go/internal/service/store"
	"github.com/kapu/anilist-discord-bot-go/internal/testhelper"
)

// --- fakes ---

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance: 시각을 옮기고 만기된 타이머를 시각 순서대로 실행한다.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Jump: 타이머를 실행하지 않고 시각만 옮긴다. (프로세스 정지 상황)
func (c *fakeClock) Jump(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeProvider struct {
	mu    sync.Mutex
	anime map[int]*domain.Media
	err   error
	calls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{anime: make(map[int]*domain.Media)}
}

func (p *fakeProvider) GetAnimeByID(_ context.Context, id int) (*domain.Media, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	media, ok := p.anime[id]
	if !ok {
		return nil, domain.ErrAnimeNotFound
	}
	copied := *media
	return &copied, nil
}

func (p *fakeProvider) set(media *domain.Media) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.anime[media.ID] = media
}

func (p *fakeProvider) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

type sentMessage struct {
	channelID string
	content   string
}

type fakeMessenger struct {
	mu          sync.Mutex
	unavailable map[string]bool
	sendErr     error
	sent        []sentMessage
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{unavailable: make(map[string]bool)}
}

func (m *fakeMessenger) ChannelAvailable(_ context.Context, channelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.unavailable[channelID]
}

func (m *fakeMessenger) SendMessage(_ context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMessage{channelID: channelID, content: content})
	return nil
}

func (m *fakeMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

type failingPutStore struct {
	store.Store
}

func (failingPutStore) Put(context.Context, string, domain.NotificationEntry, time.Duration) error {
	return stdErrors.New("disk full")
}

type failingDeleteStore struct {
	store.Store
}

func (failingDeleteStore) Delete(context.Context, string) (bool, error) {
	return false, stdErrors.New("connection reset")
}

// --- helpers ---

type harness struct {
	svc       *Service
	store     store.Store
	clock     *fakeClock
	provider  *fakeProvider
	messenger *fakeMessenger
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()

	if st == nil {
		st = store.NewFileStore(filepath.Join(t.TempDir(), "notifications.json"), testhelper.DiscardLogger())
	}
	h := &harness{
		store:     st,
		clock:     newFakeClock(),
		provider:  newFakeProvider(),
		messenger: newFakeMessenger(),
	}
	h.svc = NewService(st, h.provider, testhelper.DiscardLogger(), WithClock(h.clock))
	t.Cleanup(h.svc.Close)
	return h
}

func (h *harness) attach(t *testing.T) {
	t.Helper()
	if _, err := h.svc.Attach(context.Background(), h.messenger); err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
}

func (h *harness) releasing(id, episode int, in time.Duration) *domain.Media {
	english := "Frieren"
	media := &domain.Media{
		ID:      id,
		Title:   domain.MediaTitle{Romaji: "Sousou no Frieren", English: &english},
		Status:  domain.StatusReleasing,
		SiteURL: "https://anilist.co/anime/" + strconv.Itoa(id),
		NextAiringEpisode: &domain.NextAiringEpisode{
			Episode:  episode,
			AiringAt: h.clock.Now().Add(in).Unix(),
		},
	}
	h.provider.set(media)
	return media
}

func storeKeys(t *testing.T, st store.Store) []string {
	t.Helper()
	keys, err := st.ListKeys(context.Background(), "")
	if err != nil {
		t.Fatalf("ListKeys() error: %v", err)
	}
	return keys
}

// --- tests ---

func TestAddNotification_Scenarios(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()

	h.releasing(100, 12, time.Hour)
	h.provider.set(&domain.Media{
		ID:     101,
		Title:  domain.MediaTitle{Romaji: "Finished Show"},
		Status: domain.StatusFinished,
	})

	result := h.svc.AddNotification(ctx, 100, "chan1", "userA")
	if !result.Success || result.Code != domain.NotificationOK {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.Contains(result.Message, "Episode 12") {
		t.Fatalf("expected message to mention episode 12, got %q", result.Message)
	}
	if result.AiringDate == nil || !result.AiringDate.Equal(h.clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected airing date: %v", result.AiringDate)
	}

	entries := h.svc.GetUserNotifications("userA", "")
	if len(entries) != 1 || entries[0].Key() != "100-chan1-userA" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if keys := storeKeys(t, h.store); len(keys) != 1 || keys[0] != "100-chan1-userA" {
		t.Fatalf("unexpected store keys: %v", keys)
	}

	repeat := h.svc.AddNotification(ctx, 100, "chan1", "userA")
	if repeat.Success || repeat.Code != domain.NotificationAlreadyExists {
		t.Fatalf("expected duplicate rejection, got %+v", repeat)
	}
	if !strings.Contains(repeat.Message, "already have a notification") {
		t.Fatalf("unexpected duplicate message: %q", repeat.Message)
	}
	if h.svc.Count() != 1 || len(storeKeys(t, h.store)) != 1 {
		t.Fatalf("duplicate add must not change state")
	}

	finished := h.svc.AddNotification(ctx, 101, "chan1", "userA")
	if finished.Success || finished.Code != domain.NotificationFinished {
		t.Fatalf("expected finished failure, got %+v", finished)
	}
	if !strings.Contains(finished.Message, "finished") {
		t.Fatalf("unexpected finished message: %q", finished.Message)
	}
}

func TestAddNotification_Failures(t *testing.T) {
	t.Parallel()

	english := "Title"
	tests := map[string]struct {
		setup       func(h *harness)
		skipAttach  bool
		code        domain.NotificationCode
		messagePart string
	}{
		"not initialized": {
			setup:       func(h *harness) { h.releasing(1, 1, time.Hour) },
			skipAttach:  true,
			code:        domain.NotificationNotInitialized,
			messagePart: "not initialized",
		},
		"unknown anime": {
			setup:       func(h *harness) {},
			code:        domain.NotificationNotFound,
			messagePart: "No anime found with ID 1",
		},
		"no schedule": {
			setup: func(h *harness) {
				h.provider.set(&domain.Media{ID: 1, Title: domain.MediaTitle{Romaji: "R", English: &english}, Status: domain.StatusNotYetReleased})
			},
			code:        domain.NotificationNoSchedule,
			messagePart: "No upcoming episodes scheduled for Title",
		},
		"cancelled": {
			setup: func(h *harness) {
				media := h.releasing(1, 3, time.Hour)
				media.Status = domain.StatusCancelled
			},
			code:        domain.NotificationCancelled,
			messagePart: "cancelled",
		},
		"already aired": {
			setup:       func(h *harness) { h.releasing(1, 3, -time.Minute) },
			code:        domain.NotificationAlreadyAired,
			messagePart: "already aired",
		},
		"airing exactly now": {
			setup:       func(h *harness) { h.releasing(1, 3, 0) },
			code:        domain.NotificationAlreadyAired,
			messagePart: "already aired",
		},
		"provider error": {
			setup:       func(h *harness) { h.provider.fail(stdErrors.New("timeout")) },
			code:        domain.NotificationFailed,
			messagePart: "An error occurred",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			tc.setup(h)
			if !tc.skipAttach {
				h.attach(t)
			}

			result := h.svc.AddNotification(context.Background(), 1, "chan", "user")
			if result.Success {
				t.Fatalf("expected failure, got %+v", result)
			}
			if result.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, result.Code)
			}
			if !strings.Contains(result.Message, tc.messagePart) {
				t.Fatalf("expected message containing %q, got %q", tc.messagePart, result.Message)
			}
			if h.svc.Count() != 0 {
				t.Fatalf("failed add must not schedule anything")
			}
		})
	}
}

func TestAddNotification_ReplacesOtherChannel(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()
	h.releasing(5, 2, 2*time.Hour)

	if r := h.svc.AddNotification(ctx, 5, "chanA", "U"); !r.Success {
		t.Fatalf("first add failed: %+v", r)
	}
	if r := h.svc.AddNotification(ctx, 5, "chanB", "U"); !r.Success {
		t.Fatalf("second add failed: %+v", r)
	}

	entries := h.svc.GetUserNotifications("U", "")
	if len(entries) != 1 || entries[0].ChannelID != "chanB" {
		t.Fatalf("expected single entry in chanB, got %+v", entries)
	}
	if got := h.svc.GetUserNotifications("U", "chanA"); len(got) != 0 {
		t.Fatalf("expected no entries in chanA, got %+v", got)
	}
	if keys := storeKeys(t, h.store); len(keys) != 1 || keys[0] != "5-chanB-U" {
		t.Fatalf("unexpected store keys: %v", keys)
	}
	if h.clock.pending() != 1 {
		t.Fatalf("replaced timer must be stopped, pending=%d", h.clock.pending())
	}

	// 다른 사용자의 같은 작품 알림은 영향받지 않는다.
	if r := h.svc.AddNotification(ctx, 5, "chanA", "V"); !r.Success {
		t.Fatalf("other user add failed: %+v", r)
	}
	if h.svc.Count() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.svc.Count())
	}
}

func TestAddNotification_StoreFailureRollsBack(t *testing.T) {
	inner := store.NewFileStore(filepath.Join(t.TempDir(), "n.json"), testhelper.DiscardLogger())
	h := newHarness(t, failingPutStore{Store: inner})
	h.attach(t)
	h.releasing(7, 1, time.Hour)

	result := h.svc.AddNotification(context.Background(), 7, "chan", "user")
	if result.Success || result.Code != domain.NotificationFailed {
		t.Fatalf("expected failure, got %+v", result)
	}
	if h.svc.Count() != 0 || h.clock.pending() != 0 {
		t.Fatalf("expected rollback, count=%d pending=%d", h.svc.Count(), h.clock.pending())
	}
}

func TestAddNotification_ConflictDeleteFailureKeepsSingleEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	ctx := context.Background()

	first := newHarness(t, failingDeleteStore{Store: store.NewFileStore(path, testhelper.DiscardLogger())})
	first.attach(t)
	first.releasing(5, 2, 2*time.Hour)

	if r := first.svc.AddNotification(ctx, 5, "chanA", "U"); !r.Success {
		t.Fatalf("first add failed: %+v", r)
	}
	result := first.svc.AddNotification(ctx, 5, "chanB", "U")
	if result.Success || result.Code != domain.NotificationFailed {
		t.Fatalf("expected failure when the old channel cannot be deleted, got %+v", result)
	}

	entries := first.svc.GetUserNotifications("U", "")
	if len(entries) != 1 || entries[0].ChannelID != "chanA" {
		t.Fatalf("expected chanA entry to stay, got %+v", entries)
	}
	if keys := storeKeys(t, first.store); len(keys) != 1 || keys[0] != "5-chanA-U" {
		t.Fatalf("unexpected store keys: %v", keys)
	}
	first.svc.Close()

	second := newHarness(t, store.NewFileStore(path, testhelper.DiscardLogger()))
	second.clock.now = first.clock.Now()
	second.attach(t)
	if got := second.svc.GetUserNotifications("U", ""); len(got) != 1 || got[0].ChannelID != "chanA" {
		t.Fatalf("expected one live entry after restart, got %+v", got)
	}
}

func TestAddNotification_NonPositiveIDIsNotFound(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	h.provider.fail(stdErrors.New("must not be called"))

	for _, id := range []int{0, -3} {
		result := h.svc.AddNotification(context.Background(), id, "chan", "user")
		if result.Success || result.Code != domain.NotificationNotFound {
			t.Fatalf("id %d: expected not found, got %+v", id, result)
		}
	}
}

func TestAddNotification_ValkeyTTLHint(t *testing.T) {
	client, mini := testhelper.NewMiniValkey(t)
	st := store.NewValkeyStore(cache.NewFromClient(client, testhelper.DiscardLogger()))
	h := newHarness(t, st)
	h.attach(t)
	h.releasing(9, 4, 3*time.Hour)

	if r := h.svc.AddNotification(context.Background(), 9, "chan", "user"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}
	if ttl := mini.TTL("notification:9-chan-user"); ttl != 4*time.Hour {
		t.Fatalf("expected ttl of delay+1h, got %s", ttl)
	}
}

func TestRemoveUserNotification(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()
	h.releasing(100, 12, time.Hour)

	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}

	if !h.svc.RemoveUserNotification(ctx, 100, "chan1", "userA") {
		t.Fatalf("expected removal to succeed")
	}
	if h.svc.RemoveUserNotification(ctx, 100, "chan1", "userA") {
		t.Fatalf("expected second removal to report false")
	}
	if len(storeKeys(t, h.store)) != 0 {
		t.Fatalf("expected store to be empty")
	}

	h.clock.Advance(2 * time.Hour)
	if len(h.messenger.messages()) != 0 {
		t.Fatalf("cancelled notification must not be delivered")
	}
}

func TestRemoveUserNotification_StoreDeleteFailureKeepsEntry(t *testing.T) {
	inner := store.NewFileStore(filepath.Join(t.TempDir(), "n.json"), testhelper.DiscardLogger())
	h := newHarness(t, failingDeleteStore{Store: inner})
	h.attach(t)
	ctx := context.Background()
	h.releasing(100, 12, time.Hour)

	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}
	if h.svc.RemoveUserNotification(ctx, 100, "chan1", "userA") {
		t.Fatalf("expected removal to report false when the store delete fails")
	}
	if h.svc.Count() != 1 || h.clock.pending() != 1 {
		t.Fatalf("entry must stay scheduled, count=%d pending=%d", h.svc.Count(), h.clock.pending())
	}
	if keys := storeKeys(t, inner); len(keys) != 1 {
		t.Fatalf("expected record to stay in store, got %v", keys)
	}
}

func TestGetUserNotifications_FiltersAndSorts(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()

	h.releasing(1, 1, 3*time.Hour)
	h.releasing(2, 1, time.Hour)
	h.releasing(3, 1, 2*time.Hour)

	for _, add := range []struct {
		anime   int
		channel string
		user    string
	}{
		{1, "c1", "u"}, {2, "c2", "u"}, {3, "c1", "u"}, {1, "c1", "other"},
	} {
		if r := h.svc.AddNotification(ctx, add.anime, add.channel, add.user); !r.Success {
			t.Fatalf("add %+v failed: %+v", add, r)
		}
	}

	all := h.svc.GetUserNotifications("u", "")
	if len(all) != 3 || all[0].AnimeID != 2 || all[1].AnimeID != 3 || all[2].AnimeID != 1 {
		t.Fatalf("unexpected order: %+v", all)
	}
	inC1 := h.svc.GetUserNotifications("u", "c1")
	if len(inC1) != 2 {
		t.Fatalf("expected 2 entries in c1, got %+v", inC1)
	}
	if none := h.svc.GetUserNotifications("nobody", ""); none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", none)
	}
}

func TestDispatch_DeliversAndRemoves(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()
	h.releasing(100, 12, time.Hour)

	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}

	h.clock.Advance(59 * time.Minute)
	if len(h.messenger.messages()) != 0 {
		t.Fatalf("delivered too early")
	}

	h.clock.Advance(time.Minute)
	msgs := h.messenger.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	expected := "🎉 <@userA> Episode 12 of **Frieren** has just aired!\n\n🔗 [AniList Details](https://anilist.co/anime/100)"
	if msgs[0].channelID != "chan1" || msgs[0].content != expected {
		t.Fatalf("unexpected message: %+v", msgs[0])
	}
	if h.svc.Count() != 0 || len(storeKeys(t, h.store)) != 0 {
		t.Fatalf("delivered entry must be removed")
	}
}

func TestDispatch_UsesRefreshedMetadata(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()
	media := h.releasing(100, 12, time.Hour)

	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}

	renamed := "Frieren: Beyond Journey's End"
	updated := *media
	updated.Title.English = &renamed
	h.provider.set(&updated)

	h.clock.Advance(time.Hour)
	msgs := h.messenger.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].content, "**Frieren: Beyond Journey's End**") {
		t.Fatalf("expected refreshed title, got %+v", msgs)
	}
}

func TestDispatch_FailurePathsStillRemove(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		breakIt      func(h *harness)
		expectSent   bool
		expectedPart string
	}{
		"channel unavailable": {
			breakIt: func(h *harness) { h.messenger.unavailable["chan1"] = true },
		},
		"send fails": {
			breakIt: func(h *harness) { h.messenger.sendErr = stdErrors.New("forbidden") },
		},
		"metadata refresh fails": {
			breakIt:      func(h *harness) { h.provider.fail(stdErrors.New("503")) },
			expectSent:   true,
			expectedPart: "Episode 12 of **Anime #100**",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			h.attach(t)
			h.releasing(100, 12, time.Hour)
			if r := h.svc.AddNotification(context.Background(), 100, "chan1", "userA"); !r.Success {
				t.Fatalf("add failed: %+v", r)
			}

			h.messenger.mu.Lock()
			tc.breakIt(h)
			h.messenger.mu.Unlock()

			h.clock.Advance(time.Hour)

			msgs := h.messenger.messages()
			if tc.expectSent {
				if len(msgs) != 1 || !strings.Contains(msgs[0].content, tc.expectedPart) {
					t.Fatalf("expected fallback message, got %+v", msgs)
				}
			} else if len(msgs) != 0 {
				t.Fatalf("expected nothing delivered, got %+v", msgs)
			}
			if h.svc.Count() != 0 || len(storeKeys(t, h.store)) != 0 {
				t.Fatalf("entry must be removed regardless of outcome")
			}
		})
	}
}

func TestFinishDispatch_KeepsNewerEntry(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()
	h.releasing(100, 12, time.Hour)

	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}
	h.svc.mu.Lock()
	stale := h.svc.entries["100-chan1-userA"]
	h.svc.mu.Unlock()

	h.svc.RemoveUserNotification(ctx, 100, "chan1", "userA")
	if r := h.svc.AddNotification(ctx, 100, "chan1", "userA"); !r.Success {
		t.Fatalf("re-add failed: %+v", r)
	}

	h.svc.finishDispatch(ctx, stale)

	if h.svc.Count() != 1 || len(storeKeys(t, h.store)) != 1 {
		t.Fatalf("stale dispatch must not remove the newer entry")
	}
}

func TestLoadNotifications_RestartDurability(t *testing.T) {
	client, mini := testhelper.NewMiniValkey(t)
	st := store.NewValkeyStore(cache.NewFromClient(client, testhelper.DiscardLogger()))
	ctx := context.Background()

	first := newHarness(t, st)
	first.attach(t)
	first.releasing(1, 1, 30*time.Minute)
	first.releasing(2, 5, 2*time.Hour)
	first.releasing(3, 9, 3*time.Hour)
	for _, id := range []int{1, 2, 3} {
		if r := first.svc.AddNotification(ctx, id, "chan", "user"); !r.Success {
			t.Fatalf("add %d failed: %+v", id, r)
		}
	}
	first.svc.Close()

	// 재기동: 정지 시간 동안 1번은 방영 시각이 지났다.
	second := newHarness(t, st)
	second.clock.now = first.clock.Now().Add(time.Hour)
	second.provider = first.provider
	second.svc.provider = first.provider
	loaded, err := second.svc.Attach(ctx, second.messenger)
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	if loaded != 2 {
		t.Fatalf("expected 2 loaded entries, got %d", loaded)
	}

	entries := second.svc.GetUserNotifications("user", "")
	if len(entries) != 2 || entries[0].AnimeID != 2 || entries[1].AnimeID != 3 {
		t.Fatalf("unexpected reloaded entries: %+v", entries)
	}
	if mini.Exists("notification:1-chan-user") {
		t.Fatalf("past-due entry must be dropped from the store")
	}

	second.clock.Advance(3 * time.Hour)
	msgs := second.messenger.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected the two live entries to be delivered, got %+v", msgs)
	}
	for _, msg := range msgs {
		if strings.Contains(msg.content, "Episode 1 of") {
			t.Fatalf("past-due entry must never be delivered: %q", msg.content)
		}
	}
}

func TestLoadNotifications_FileStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	ctx := context.Background()

	first := newHarness(t, store.NewFileStore(path, testhelper.DiscardLogger()))
	first.attach(t)
	first.releasing(42, 7, 6*time.Hour)
	if r := first.svc.AddNotification(ctx, 42, "chan", "user"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}
	first.svc.Close()

	second := newHarness(t, store.NewFileStore(path, testhelper.DiscardLogger()))
	second.clock.now = first.clock.Now()
	second.attach(t)

	entries := second.svc.GetUserNotifications("user", "chan")
	if len(entries) != 1 {
		t.Fatalf("expected reloaded entry, got %+v", entries)
	}
	want := domain.NotificationEntry{
		AnimeID:   42,
		ChannelID: "chan",
		UserID:    "user",
		AiringAt:  first.clock.Now().Add(6 * time.Hour).UnixMilli(),
		Episode:   7,
	}
	if entries[0] != want {
		t.Fatalf("got %+v, expected %+v", entries[0], want)
	}
}

func TestLoadNotifications_KeepsLatestPerAnimeUser(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "notifications.json"), testhelper.DiscardLogger())
	h := newHarness(t, st)
	now := h.clock.Now()

	seed := []domain.NotificationEntry{
		{AnimeID: 5, ChannelID: "chanA", UserID: "U", Episode: 2, AiringAt: now.Add(time.Hour).UnixMilli()},
		{AnimeID: 5, ChannelID: "chanB", UserID: "U", Episode: 3, AiringAt: now.Add(3 * time.Hour).UnixMilli()},
		{AnimeID: 5, ChannelID: "chanA", UserID: "V", Episode: 2, AiringAt: now.Add(time.Hour).UnixMilli()},
		{AnimeID: 6, ChannelID: "chanA", UserID: "U", Episode: 1, AiringAt: now.Add(2 * time.Hour).UnixMilli()},
	}
	for _, e := range seed {
		if err := st.Put(ctx, e.Key(), e, 0); err != nil {
			t.Fatalf("seed Put() error: %v", err)
		}
	}

	loaded, err := h.svc.Attach(ctx, h.messenger)
	if err != nil {
		t.Fatalf("Attach() error: %v", err)
	}
	if loaded != 3 {
		t.Fatalf("expected 3 loaded entries, got %d", loaded)
	}

	var five []domain.NotificationEntry
	for _, e := range h.svc.GetUserNotifications("U", "") {
		if e.AnimeID == 5 {
			five = append(five, e)
		}
	}
	if len(five) != 1 || five[0].ChannelID != "chanB" {
		t.Fatalf("expected only the latest chanB entry for (5, U), got %+v", five)
	}
	for _, key := range storeKeys(t, st) {
		if key == "5-chanA-U" {
			t.Fatalf("duplicate record must be dropped from the store")
		}
	}
	if h.clock.pending() != 3 {
		t.Fatalf("expected 3 timers, got %d", h.clock.pending())
	}
}

func TestCleanup_DeleteFailureRetriesNextCycle(t *testing.T) {
	inner := store.NewFileStore(filepath.Join(t.TempDir(), "n.json"), testhelper.DiscardLogger())
	h := newHarness(t, failingDeleteStore{Store: inner})
	h.attach(t)
	ctx := context.Background()
	h.releasing(1, 1, time.Hour)

	if r := h.svc.AddNotification(ctx, 1, "chan", "user"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}
	h.clock.Jump(2 * time.Hour)

	if removed := h.svc.Cleanup(ctx); removed != 0 {
		t.Fatalf("expected nothing removed while the store fails, got %d", removed)
	}
	if h.svc.Count() != 1 {
		t.Fatalf("entry must stay for the next cleanup cycle")
	}
}

func TestCleanup_RemovesMissedEntriesIdempotently(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	ctx := context.Background()

	h.releasing(1, 1, time.Hour)
	h.releasing(2, 1, 5*time.Hour)
	for _, id := range []int{1, 2} {
		if r := h.svc.AddNotification(ctx, id, "chan", "user"); !r.Success {
			t.Fatalf("add %d failed: %+v", id, r)
		}
	}

	h.clock.Jump(2 * time.Hour)

	if removed := h.svc.Cleanup(ctx); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if removed := h.svc.Cleanup(ctx); removed != 0 {
		t.Fatalf("second cleanup must remove nothing, got %d", removed)
	}
	if keys := storeKeys(t, h.store); len(keys) != 1 || keys[0] != "2-chan-user" {
		t.Fatalf("unexpected store keys: %v", keys)
	}

	h.clock.Advance(0)
	if len(h.messenger.messages()) != 0 {
		t.Fatalf("cleaned entry must not be delivered")
	}
}

func TestClose_StopsTimers(t *testing.T) {
	h := newHarness(t, nil)
	h.attach(t)
	h.releasing(1, 1, time.Hour)
	if r := h.svc.AddNotification(context.Background(), 1, "chan", "user"); !r.Success {
		t.Fatalf("add failed: %+v", r)
	}

	h.svc.Close()
	h.clock.Advance(2 * time.Hour)

	if len(h.messenger.messages()) != 0 {
		t.Fatalf("closed service must not deliver")
	}
	if len(storeKeys(t, h.store)) != 1 {
		t.Fatalf("closing must keep persisted entries")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.svc.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run() did not stop after cancel")
	}
}

func TestTTLHint(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		delay    time.Duration
		expected time.Duration
	}{
		"adds one hour": {delay: 2 * time.Hour, expected: 3 * time.Hour},
		"tiny delay":    {delay: time.Second, expected: time.Hour + time.Second},
		"clamps floor":  {delay: -2 * time.Hour, expected: 60 * time.Second},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := ttlHint(tc.delay); got != tc.expected {
				t.Fatalf("ttlHint(%s) = %s, expected %s", tc.delay, got, tc.expected)
			}
		})
	}
}
