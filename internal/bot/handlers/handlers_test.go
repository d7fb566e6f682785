package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/rhnyadav/aitoolsbox/internal/bot/keyboard"
	"github.com/rhnyadav/aitoolsbox/internal/domain"
	apperrors "github.com/rhnyadav/aitoolsbox/internal/errors"
	"github.com/rhnyadav/aitoolsbox/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeContext implements the subset of telebot.Context the handlers touch.
// Calls to anything else panic, which is exactly what a test should do.
type fakeContext struct {
	telebot.Context

	sender   *telebot.User
	callback *telebot.Callback
	text     string
	args     []string

	sent      []string
	responded bool
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Text() string                { return f.text }
func (f *fakeContext) Args() []string              { return f.args }

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func (f *fakeContext) Respond(_ ...*telebot.CallbackResponse) error {
	f.responded = true
	return nil
}

func callbackFrom(userID int64, data string) *fakeContext {
	return &fakeContext{
		sender:   &telebot.User{ID: userID, Username: "alice", FirstName: "Alice"},
		callback: &telebot.Callback{Data: data},
	}
}

type upsertCall struct {
	id                  int64
	username, firstName string
}

type fakeUsers struct {
	upserts []upsertCall
	ids     []int64
	count   int64
	err     error
}

func (f *fakeUsers) Upsert(_ context.Context, id int64, username, firstName string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, upsertCall{id: id, username: username, firstName: firstName})
	return nil
}

func (f *fakeUsers) FindByID(context.Context, int64) (*domain.User, error) { return nil, f.err }
func (f *fakeUsers) ListIDs(context.Context) ([]int64, error)              { return f.ids, f.err }
func (f *fakeUsers) Count(context.Context) (int64, error)                  { return f.count, f.err }

type fakeBans struct {
	banned   map[int64]bool
	banCalls []int64
	unbans   []int64
	count    int64
	err      error
}

func (f *fakeBans) Ban(_ context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	if f.banned == nil {
		f.banned = make(map[int64]bool)
	}
	f.banned[userID] = true
	f.banCalls = append(f.banCalls, userID)
	return nil
}

func (f *fakeBans) Unban(_ context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.banned, userID)
	f.unbans = append(f.unbans, userID)
	return nil
}

func (f *fakeBans) IsBanned(_ context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.banned[userID], nil
}

func (f *fakeBans) Count(context.Context) (int64, error) { return f.count, f.err }

type usageCall struct {
	userID int64
	tool   string
}

type fakeAudit struct {
	usageCh     chan usageCall
	impressions chan int64
	usageCount  int64
	top         []domain.ToolUsage
	err         error
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{
		usageCh:     make(chan usageCall, 8),
		impressions: make(chan int64, 8),
	}
}

func (f *fakeAudit) RecordUsage(_ context.Context, userID int64, tool string) error {
	if f.err != nil {
		return f.err
	}
	f.usageCh <- usageCall{userID: userID, tool: tool}
	return nil
}

func (f *fakeAudit) RecordAdImpression(_ context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	f.impressions <- userID
	return nil
}

func (f *fakeAudit) UsageCount(context.Context) (int64, error) { return f.usageCount, f.err }

func (f *fakeAudit) TopTools(context.Context, int) ([]domain.ToolUsage, error) {
	return f.top, f.err
}

type fakeLimiter struct {
	allow bool
	err   error
	calls []int64
}

func (f *fakeLimiter) TryAcquire(_ context.Context, userID int64) (bool, error) {
	f.calls = append(f.calls, userID)
	return f.allow, f.err
}

func (f *fakeLimiter) Cooldown() time.Duration   { return 6 * time.Second }
func (f *fakeLimiter) SetCooldown(time.Duration) {}

func waitForUsage(t *testing.T, audit *fakeAudit) usageCall {
	t.Helper()

	select {
	case call := <-audit.usageCh:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("usage record was never written")
		return usageCall{}
	}
}

func assertNoUsage(t *testing.T, audit *fakeAudit) {
	t.Helper()

	select {
	case call := <-audit.usageCh:
		t.Fatalf("unexpected usage record: %+v", call)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartHandler_RegistersUserAndShowsMenu(t *testing.T) {
	users := &fakeUsers{}
	h := NewStartHandler(users, keyboard.NewBuilder(testLogger()), testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42, Username: "alice", FirstName: "Alice"}}

	require.NoError(t, h(c))

	require.Len(t, users.upserts, 1)
	assert.Equal(t, upsertCall{id: 42, username: "alice", firstName: "Alice"}, users.upserts[0])

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Welcome to AI Tools")
	assert.Contains(t, c.sent[0], "Select a tool below")
}

func TestStartHandler_StoreFailurePropagates(t *testing.T) {
	users := &fakeUsers{err: apperrors.NewStorageError(errors.New("disk full"))}
	h := NewStartHandler(users, keyboard.NewBuilder(testLogger()), testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42}}

	err := h(c)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E200", appErr.Code)
	assert.Empty(t, c.sent)
}

func TestStartHandler_NoSender(t *testing.T) {
	users := &fakeUsers{}
	h := NewStartHandler(users, keyboard.NewBuilder(testLogger()), testLogger())

	require.NoError(t, h(&fakeContext{}))
	assert.Empty(t, users.upserts)
}

func toolDeps(bans *fakeBans, limiter *fakeLimiter, sessions *session.Manager, audit *fakeAudit) ToolSelectionDeps {
	return ToolSelectionDeps{
		Bans:     bans,
		Limiter:  limiter,
		Sessions: sessions,
		Audit:    audit,
		Log:      testLogger(),
	}
}

func TestToolSelection_AcceptedActivatesTool(t *testing.T) {
	bans := &fakeBans{}
	limiter := &fakeLimiter{allow: true}
	sessions := session.NewManager()
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "yt")
	require.NoError(t, h(c))

	assert.True(t, c.responded)

	tool, ok := sessions.Active(42)
	require.True(t, ok)
	assert.Equal(t, "yt", tool)

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Tool Activated")
	assert.Contains(t, c.sent[0], "Send YouTube video link")

	call := waitForUsage(t, audit)
	assert.Equal(t, usageCall{userID: 42, tool: "yt"}, call)
}

func TestToolSelection_UnknownTokenRejected(t *testing.T) {
	bans := &fakeBans{}
	limiter := &fakeLimiter{allow: true}
	sessions := session.NewManager()
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "nonsense")
	err := h(c)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "E100", appErr.Code)

	assert.Empty(t, limiter.calls)
	_, ok := sessions.Active(42)
	assert.False(t, ok)
	assertNoUsage(t, audit)
}

func TestToolSelection_BannedUserRejected(t *testing.T) {
	bans := &fakeBans{banned: map[int64]bool{42: true}}
	limiter := &fakeLimiter{allow: true}
	sessions := session.NewManager()
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "yt")
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "🚫 You are banned.", c.sent[0])

	// The ban check runs before the cooldown: a banned press burns nothing.
	assert.Empty(t, limiter.calls)
	_, ok := sessions.Active(42)
	assert.False(t, ok)
	assertNoUsage(t, audit)
}

func TestToolSelection_CooldownRejectionKeepsActiveTool(t *testing.T) {
	bans := &fakeBans{}
	limiter := &fakeLimiter{allow: false}
	sessions := session.NewManager()
	sessions.SetActive(42, "yt")
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "ig")
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "⏳ Please wait before next request.", c.sent[0])

	tool, ok := sessions.Active(42)
	require.True(t, ok)
	assert.Equal(t, "yt", tool)
	assertNoUsage(t, audit)
}

func TestToolSelection_LimiterBackendFailureAdmits(t *testing.T) {
	bans := &fakeBans{}
	limiter := &fakeLimiter{allow: false, err: errors.New("backend down")}
	sessions := session.NewManager()
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "yt")
	require.NoError(t, h(c))

	tool, ok := sessions.Active(42)
	require.True(t, ok)
	assert.Equal(t, "yt", tool)
}

func TestToolSelection_BanCheckFailurePropagates(t *testing.T) {
	bans := &fakeBans{err: apperrors.NewStorageError(errors.New("disk full"))}
	limiter := &fakeLimiter{allow: true}
	sessions := session.NewManager()
	audit := newFakeAudit()

	h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, audit))

	c := callbackFrom(42, "yt")
	err := h(c)
	require.Error(t, err)

	assert.Empty(t, limiter.calls)
	_, ok := sessions.Active(42)
	assert.False(t, ok)
}

func TestToolSelection_EveryCatalogTokenActivates(t *testing.T) {
	for _, token := range []string{"ig", "yt", "fb", "img_pdf", "pdf_img", "tts", "caption", "hashtag"} {
		bans := &fakeBans{}
		limiter := &fakeLimiter{allow: true}
		sessions := session.NewManager()

		h := NewToolSelectionHandler(toolDeps(bans, limiter, sessions, newFakeAudit()))

		c := callbackFrom(42, token)
		require.NoError(t, h(c), "token %s", token)

		tool, ok := sessions.Active(42)
		require.True(t, ok, "token %s", token)
		assert.Equal(t, token, tool)
	}
}

func TestAdminPanel_AdminSeesPanel(t *testing.T) {
	h := NewAdminPanelHandler(100, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Admin Panel")
	assert.Contains(t, c.sent[0], "/ban <user_id>")
}

func TestAdminPanel_NonAdminGetsSilence(t *testing.T) {
	h := NewAdminPanelHandler(100, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42}}
	require.NoError(t, h(c))
	assert.Empty(t, c.sent)
}

func TestAdminPanel_NoAdminConfigured(t *testing.T) {
	h := NewAdminPanelHandler(0, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42}}
	require.NoError(t, h(c))
	assert.Empty(t, c.sent)
}

func TestBanHandler_BansTarget(t *testing.T) {
	bans := &fakeBans{}
	h := NewBanHandler(100, bans, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}, args: []string{"99"}}
	require.NoError(t, h(c))

	assert.Equal(t, []int64{99}, bans.banCalls)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "🚫 User 99 banned", c.sent[0])
}

func TestBanHandler_MalformedArgument(t *testing.T) {
	for _, args := range [][]string{nil, {}, {"abc"}, {"1", "2"}} {
		bans := &fakeBans{}
		h := NewBanHandler(100, bans, testLogger())

		c := &fakeContext{sender: &telebot.User{ID: 100}, args: args}
		err := h(c)
		require.Error(t, err, "args %v", args)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "E100", appErr.Code)
		assert.Equal(t, "Usage: /ban <user_id>", appErr.UserMessage)
		assert.Empty(t, bans.banCalls)
	}
}

func TestBanHandler_NonAdminCausesNoMutation(t *testing.T) {
	bans := &fakeBans{}
	h := NewBanHandler(100, bans, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42}, args: []string{"99"}}
	require.NoError(t, h(c))

	assert.Empty(t, c.sent)
	assert.Empty(t, bans.banCalls)
}

func TestUnbanHandler_UnbansTarget(t *testing.T) {
	bans := &fakeBans{banned: map[int64]bool{99: true}}
	h := NewUnbanHandler(100, bans, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}, args: []string{"99"}}
	require.NoError(t, h(c))

	assert.Equal(t, []int64{99}, bans.unbans)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "✅ User 99 unbanned", c.sent[0])
}

func TestStatsHandler_ComposesAggregates(t *testing.T) {
	users := &fakeUsers{count: 12}
	bans := &fakeBans{count: 2}
	audit := newFakeAudit()
	audit.usageCount = 34
	audit.top = []domain.ToolUsage{
		{Tool: "yt", Count: 20},
		{Tool: "ig", Count: 14},
	}

	h := NewStatsHandler(100, users, bans, audit, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	body := c.sent[0]
	assert.Contains(t, body, "Users: 12")
	assert.Contains(t, body, "Banned: 2")
	assert.Contains(t, body, "Tool activations: 34")
	assert.True(t, strings.Index(body, "yt") < strings.Index(body, "ig"))
}

func TestBroadcastHandler_EmptyMessageRejected(t *testing.T) {
	users := &fakeUsers{ids: []int64{1, 2}}
	h := NewBroadcastHandler(100, users, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}}
	err := h(c)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Usage: /broadcast <message>", appErr.UserMessage)
}

func TestBroadcastHandler_NoRecipients(t *testing.T) {
	users := &fakeUsers{}
	h := NewBroadcastHandler(100, users, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 100}, args: []string{"hello", "world"}}
	require.NoError(t, h(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, "📣 Broadcast delivered to 0/0 users", c.sent[0])
}

func TestBroadcastHandler_NonAdminGetsSilence(t *testing.T) {
	users := &fakeUsers{ids: []int64{1}}
	h := NewBroadcastHandler(100, users, testLogger())

	c := &fakeContext{sender: &telebot.User{ID: 42}, args: []string{"hello"}}
	require.NoError(t, h(c))
	assert.Empty(t, c.sent)
}
