package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docqa/internal/config"
	"docqa/internal/ocr"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	cfg := config.Config{
		UploadDir:         t.TempDir(),
		ChunkSize:         1000,
		ChunkOverlap:      200,
		FetchTimeoutSecs:  2,
		TopK:              4,
		MaxMessages:       20,
		EmbedDim:          64,
		SessionCookieName: "docqa_session",
		LLMProviders:      "mock",
		EmbedProviders:    "mock",
	}
	s := NewServerWithEngine(cfg, &ocr.Stub{Text: "The warranty covers two years of use."})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func uploadFile(t *testing.T, client *http.Client, url, filename string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("file bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := client.Post(url+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func askQuestion(t *testing.T, client *http.Client, url, question string) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]string{"question": question})
	require.NoError(t, err)
	resp, err := client.Post(url+"/ask", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", body)
	code, _ := errObj["code"].(string)
	return code
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	srv, client := newTestServer(t)
	resp := uploadFile(t, client, srv.URL, "notes.txt")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "DQ-API-4002", errorCode(t, decodeBody(t, resp)))
}

func TestUploadRequiresFile(t *testing.T) {
	srv, client := newTestServer(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	resp, err := client.Post(srv.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, "DQ-API-4001", errorCode(t, body))
}

func TestAskBeforeUpload(t *testing.T) {
	srv, client := newTestServer(t)
	resp := askQuestion(t, client, srv.URL, "anything yet?")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "DQ-API-4003", errorCode(t, decodeBody(t, resp)))
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	srv, client := newTestServer(t)
	resp := askQuestion(t, client, srv.URL, "   ")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadAskFlow(t *testing.T) {
	srv, client := newTestServer(t)

	resp := uploadFile(t, client, srv.URL, "scan.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "scan.png", body["filename"])
	require.Equal(t, float64(1), body["chunk_count"])

	resp = askQuestion(t, client, srv.URL, "How long is the warranty?")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	require.Equal(t, true, body["success"])
	require.Equal(t, "How long is the warranty?", body["question"])
	answer, _ := body["answer"].(string)
	require.NotEmpty(t, answer)

	// Index page reflects the session state.
	indexResp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	body = decodeBody(t, indexResp)
	require.Equal(t, true, body["has_api_key"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	document, ok := body["document"].(map[string]any)
	require.True(t, ok, "expected document metadata, got %v", body["document"])
	require.Equal(t, "scan.png", document["filename"])
}

func TestClearKeepsIndex(t *testing.T) {
	srv, client := newTestServer(t)
	resp := uploadFile(t, client, srv.URL, "scan.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	askQuestion(t, client, srv.URL, "first question").Body.Close()

	clearResp, err := client.Post(srv.URL+"/clear", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, clearResp.StatusCode)
	clearResp.Body.Close()

	indexResp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	body := decodeBody(t, indexResp)
	messages, _ := body["messages"].([]any)
	require.Empty(t, messages)
	require.NotNil(t, body["document"], "clear must not drop the document index")

	// The cleared session can still answer questions.
	resp = askQuestion(t, client, srv.URL, "second question")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestResetDropsSession(t *testing.T) {
	srv, client := newTestServer(t)
	resp := uploadFile(t, client, srv.URL, "scan.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resetResp, err := client.Post(srv.URL+"/reset", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resetResp.StatusCode)
	resetResp.Body.Close()

	resp = askQuestion(t, client, srv.URL, "is anything left?")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "DQ-API-4003", errorCode(t, decodeBody(t, resp)))
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/ask", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
