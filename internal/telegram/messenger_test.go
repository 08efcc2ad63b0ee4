package telegram_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"

	"github.com/travelboss/travelbot/internal/media"
	"github.com/travelboss/travelbot/internal/telegram"
)

type apiCall struct {
	method  string
	fields  map[string]string
	file    string
	content string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	call := apiCall{method: method, fields: map[string]string{}}

	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			call.fields[k] = v[0]
		}
		for k, headers := range r.MultipartForm.File {
			call.file = k + ":" + headers[0].Filename
			if fh, err := headers[0].Open(); err == nil {
				data, _ := io.ReadAll(fh)
				call.content = string(data)
				fh.Close()
			}
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":99,"is_bot":true,"first_name":"TravelBot","username":"travelboss_bot"}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":244900,"type":"private"}}}`))
	}
}

func (f *fakeAPI) last(t *testing.T) apiCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no API calls")
	}
	return f.calls[len(f.calls)-1]
}

func newMessenger(t *testing.T) (*telegram.Messenger, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := telegram.NewTelegramBot("123:test-token", log, bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("NewTelegramBot() error = %v", err)
	}
	return telegram.NewMessenger(b, log), api
}

func TestMessenger_Connect(t *testing.T) {
	t.Parallel()

	m, _ := newMessenger(t)
	if m.Connected() {
		t.Fatal("Connected() before Connect")
	}

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !m.Connected() {
		t.Error("Connected() = false after Connect")
	}

	m.Disconnect()
	if m.Connected() {
		t.Error("Connected() after Disconnect")
	}
}

func TestMessenger_SendText(t *testing.T) {
	t.Parallel()

	m, api := newMessenger(t)
	if err := m.SendText(context.Background(), "244900", "Olá!"); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}

	call := api.last(t)
	if call.method != "sendMessage" || call.fields["chat_id"] != "244900" || call.fields["text"] != "Olá!" {
		t.Errorf("call = %+v", call)
	}

	if err := m.SendText(context.Background(), "not-a-chat", "x"); err == nil {
		t.Error("SendText() accepted an invalid chat id")
	}
}

func TestMessenger_SendMedia(t *testing.T) {
	t.Parallel()

	m, api := newMessenger(t)
	err := m.SendMedia(context.Background(), "244900", "logo.png", strings.NewReader("png-bytes"), "Logo oficial")
	if err != nil {
		t.Fatalf("SendMedia() error = %v", err)
	}

	call := api.last(t)
	if call.method != "sendPhoto" || call.fields["caption"] != "Logo oficial" {
		t.Errorf("call = %+v", call)
	}
	if call.file != "photo:logo.png" || call.content != "png-bytes" {
		t.Errorf("uploaded file = %q (%q)", call.file, call.content)
	}
}

func TestMessenger_SendLocation(t *testing.T) {
	t.Parallel()

	m, api := newMessenger(t)
	loc := media.Location{Latitude: -8.97694, Longitude: 13.36688, Label: "Travel Boss - Kikuxi Shopping"}
	if err := m.SendLocation(context.Background(), "244900", loc); err != nil {
		t.Fatalf("SendLocation() error = %v", err)
	}

	call := api.last(t)
	if call.method != "sendVenue" || call.fields["title"] != loc.Label || call.fields["latitude"] != "-8.97694" {
		t.Errorf("call = %+v", call)
	}
}
