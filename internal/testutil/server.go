package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestServer - httptest-сервер поверх готового роутера
type TestServer struct {
	Server *httptest.Server
}

func NewTestServer(t *testing.T, handler http.Handler) *TestServer {
	t.Helper()
	ts := &TestServer{Server: httptest.NewServer(handler)}
	t.Cleanup(ts.Server.Close)
	return ts
}

// SendRequest отправляет JSON-запрос и возвращает ответ и тело строкой
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()
	url := ts.Server.URL + path

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}

	return res, string(resBodyBytes)
}

// Envelope - общий формат ответа API
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

func DecodeEnvelope(t *testing.T, body string) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("Не удалось распарсить ответ %q: %v", body, err)
	}
	return env
}

// DecodeData раскладывает data из конверта в out
func DecodeData(t *testing.T, body string, out interface{}) {
	t.Helper()
	env := DecodeEnvelope(t, body)
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("Не удалось распарсить data %s: %v", string(env.Data), err)
	}
}
