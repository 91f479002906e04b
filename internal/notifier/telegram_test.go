package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got map[string]string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	require.NoError(t, tn.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("T", "1", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	require.NoError(t, tn.SendWithRetry(context.Background(), "x", 2))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_NoRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("T", "1", "", zerolog.Nop())
	tn.BaseURL = srv.URL
	err := tn.SendWithRetry(context.Background(), "x", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestPoll_DispatchesCommands(t *testing.T) {
	var sent []string
	mux := http.NewServeMux()
	mux.HandleFunc("/botT/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("offset"))
		w.Write([]byte(`{"ok":true,"result":[{"update_id":5,"message":{"text":" /goal "}},{"update_id":6}]}`))
	})
	mux.HandleFunc("/botT/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		json.NewDecoder(r.Body).Decode(&p)
		sent = append(sent, p["text"])
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tn := NewTelegramNotifier("T", "1", "", zerolog.Nop())
	tn.BaseURL = srv.URL

	var commands []string
	next, err := tn.poll(context.Background(), srv.Client(), 5, func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		return "reply:" + cmd
	})
	require.NoError(t, err)
	assert.Equal(t, 7, next)
	assert.Equal(t, []string{"/goal"}, commands)
	assert.Equal(t, []string{"reply:/goal"}, sent)
}
