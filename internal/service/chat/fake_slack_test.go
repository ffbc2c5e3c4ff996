package chat_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// fakeSlack is an httptest stand-in for the Slack Web API. Each endpoint
// serves queued responses in order and repeats the last one when exhausted.
type fakeSlack struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string][]string
	users     map[string]string
	calls     map[string][]map[string]string
}

func newFakeSlack() *fakeSlack {
	f := &fakeSlack{
		responses: make(map[string][]string),
		users:     make(map[string]string),
		calls:     make(map[string][]map[string]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeSlack) url() string {
	return f.server.URL + "/"
}

func (f *fakeSlack) close() {
	f.server.Close()
}

func (f *fakeSlack) on(method string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = append(f.responses[method], bodies...)
}

func (f *fakeSlack) user(id, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = body
}

func (f *fakeSlack) callsTo(method string) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.calls[method]...)
}

func (f *fakeSlack) handle(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/")
	values := requestValues(r)

	f.mu.Lock()
	f.calls[method] = append(f.calls[method], values)
	queue := f.responses[method]
	body := `{"ok":false,"error":"unknown_method"}`
	switch {
	case method == "users.info":
		body = slackError("user_not_found")
		if u, ok := f.users[values["user"]]; ok {
			body = u
		}
	case len(queue) > 0:
		body = queue[0]
		if len(queue) > 1 {
			f.responses[method] = queue[1:]
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// requestValues flattens either a form body or a JSON body into strings.
func requestValues(r *http.Request) map[string]string {
	out := make(map[string]string)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			for k, v := range body {
				switch typed := v.(type) {
				case string:
					out[k] = typed
				default:
					encoded, _ := json.Marshal(typed)
					out[k] = string(encoded)
				}
			}
		}
		return out
	}

	_ = r.ParseForm()
	for k := range r.Form {
		out[k] = r.Form.Get(k)
	}
	return out
}

func repliesBody(messages ...string) string {
	return fmt.Sprintf(`{"ok":true,"has_more":false,"messages":[%s]}`, strings.Join(messages, ","))
}

func message(user, text string) string {
	encoded, _ := json.Marshal(map[string]string{
		"type": "message",
		"user": user,
		"text": text,
		"ts":   "1234567890.123456",
	})
	return string(encoded)
}

func userBody(id, realName, displayName, handle string) string {
	encoded, _ := json.Marshal(map[string]any{
		"ok": true,
		"user": map[string]any{
			"id":        id,
			"name":      handle,
			"real_name": realName,
			"profile": map[string]string{
				"display_name": displayName,
			},
		},
	})
	return string(encoded)
}

func slackError(code string) string {
	return fmt.Sprintf(`{"ok":false,"error":%q}`, code)
}
