package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockSentinel/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	Method string
	Form   map[string]string
}

// fakeTelegram is a minimal Bot API server.
type fakeTelegram struct {
	mu        sync.Mutex
	calls     []apiCall
	failSends int
	editErr   string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	parts := strings.Split(r.URL.Path, "/")
	method := parts[len(parts)-1]
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Form: form})
	failSend := method == "sendMessage" && f.failSends > 0
	if failSend {
		f.failSends--
	}
	editErr := f.editErr
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case method == "getMe":
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Stock","username":"stock_bot"}}`)
	case failSend:
		fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"Internal Server Error"}`)
	case method == "sendMessage":
		fmt.Fprintf(w, `{"ok":true,"result":{"message_id":42,"date":0,"chat":{"id":%s,"type":"private"},"text":"ok"}}`, form["chat_id"])
	case method == "editMessageText" && editErr != "":
		fmt.Fprintf(w, `{"ok":false,"error_code":400,"description":%q}`, editErr)
	case method == "editMessageText":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	}
}

func (f *fakeTelegram) set(fn func(f *fakeTelegram)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeTelegram) callsTo(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestNotifier(t *testing.T, chatID int64) (*TelegramNotifier, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tn, err := NewTelegramNotifier(TelegramOptions{
		Token:    "TOKEN",
		ChatID:   chatID,
		Endpoint: srv.URL + "/bot%s/%s",
	}, logger.Nop())
	require.NoError(t, err)
	tn.retryBase = time.Millisecond
	return tn, fake
}

func TestNewTelegramNotifier_RequiresToken(t *testing.T) {
	_, err := NewTelegramNotifier(TelegramOptions{}, logger.Nop())
	assert.Error(t, err)
}

func TestTelegramNotifier_SendTo(t *testing.T) {
	tn, fake := newTestNotifier(t, 0)

	id, err := tn.SendTo(777, "*hello*")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	sends := fake.callsTo("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "777", sends[0].Form["chat_id"])
	assert.Equal(t, "*hello*", sends[0].Form["text"])
	assert.Equal(t, "Markdown", sends[0].Form["parse_mode"])
}

func TestTelegramNotifier_SendWithoutDefaultChat(t *testing.T) {
	tn, _ := newTestNotifier(t, 0)
	assert.Error(t, tn.Send("x"))
}

func TestTelegramNotifier_Edit(t *testing.T) {
	tn, fake := newTestNotifier(t, 0)

	require.NoError(t, tn.Edit(777, 42, "done"))
	edits := fake.callsTo("editMessageText")
	require.Len(t, edits, 1)
	assert.Equal(t, "42", edits[0].Form["message_id"])
	assert.Equal(t, "done", edits[0].Form["text"])

	fake.set(func(f *fakeTelegram) { f.editErr = "Bad Request: message is not modified" })
	assert.NoError(t, tn.Edit(777, 42, "done"))

	fake.set(func(f *fakeTelegram) { f.editErr = "Bad Request: message to edit not found" })
	assert.Error(t, tn.Edit(777, 42, "done"))
}

func TestTelegramNotifier_SendWithRetry(t *testing.T) {
	tn, fake := newTestNotifier(t, 555)
	fake.set(func(f *fakeTelegram) { f.failSends = 2 })

	require.NoError(t, tn.SendWithRetry(context.Background(), "report", 3))
	assert.Len(t, fake.callsTo("sendMessage"), 3)
}

func TestTelegramNotifier_SendWithRetryExhausted(t *testing.T) {
	tn, fake := newTestNotifier(t, 555)
	fake.set(func(f *fakeTelegram) { f.failSends = 10 })

	err := tn.SendWithRetry(context.Background(), "report", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
	assert.Len(t, fake.callsTo("sendMessage"), 2)
}

func TestHandleWebhook(t *testing.T) {
	body := `{"update_id":9,"message":{"message_id":1,"date":0,
		"from":{"id":3,"is_bot":false,"first_name":"A","username":"alice"},
		"chat":{"id":777,"type":"private"},"text":"aapl"}}`
	r := httptest.NewRequest(http.MethodPost, "/api/bot", strings.NewReader(body))

	u, ok, err := HandleWebhook(r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Update{UpdateID: 9, ChatID: 777, UserName: "alice", Text: "aapl"}, u)
}

func TestHandleWebhook_NonText(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/bot", strings.NewReader(`{"update_id":10}`))
	_, ok, err := HandleWebhook(r)
	require.NoError(t, err)
	assert.False(t, ok)

	r = httptest.NewRequest(http.MethodPost, "/api/bot", strings.NewReader(`{not json`))
	_, _, err = HandleWebhook(r)
	assert.Error(t, err)

	r = httptest.NewRequest(http.MethodGet, "/api/bot", nil)
	_, _, err = HandleWebhook(r)
	assert.Error(t, err)
}
