package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appanalysis "github.com/Aayan-01/CLOT/internal/application/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/analysis"
	"github.com/Aayan-01/CLOT/internal/domain/session"
	"github.com/Aayan-01/CLOT/internal/infra/httpserver"
	"github.com/Aayan-01/CLOT/internal/metrics"
)

const testSessionID = "0f8fad5b-d9cb-469f-a165-70867728950e"

var pngUpload = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type stubAnalyzer struct {
	sess      *session.Session
	err       error
	gotImages []analysis.ImageInput
}

func (s *stubAnalyzer) Submit(ctx context.Context, cmd appanalysis.SubmitCommand) (*session.Session, error) {
	s.gotImages = cmd.Images
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

type stubChatter struct {
	answer     string
	err        error
	gotMessage string
}

func (s *stubChatter) Respond(ctx context.Context, sessionID, message string) (string, error) {
	s.gotMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type stubSessions struct {
	sess *session.Session
	err  error
}

func (s *stubSessions) Get(ctx context.Context, id string) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sess, nil
}

func testSession() *session.Session {
	return &session.Session{
		ID: testSessionID,
		Analysis: analysis.Result{
			Authenticity: analysis.Authenticity{Score: 88, Confidence: 90, Verdict: "AUTHENTIC"},
			Brand:        analysis.Brand{Name: "Carhartt", Confidence: 85},
			Condition:    analysis.Condition{Score: 4, Description: "Light wear"},
			Era:          analysis.Era{Classification: "Vintage", Decade: "1990s"},
			Rarity:       "rare",
		},
		Conversation: []session.Turn{},
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(session.DefaultTTL),
	}
}

func newTestRouter(a *stubAnalyzer, c *stubChatter, s *stubSessions) http.Handler {
	if a == nil {
		a = &stubAnalyzer{sess: testSession()}
	}
	if c == nil {
		c = &stubChatter{answer: "hello"}
	}
	if s == nil {
		s = &stubSessions{sess: testSession()}
	}
	return httpserver.NewRouter(a, c, s, metrics.New(), httpserver.Config{})
}

func multipartBody(t *testing.T, names []string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(nil, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, body["timestamp"])
}

func TestAnalyzeHappyPath(t *testing.T) {
	analyzer := &stubAnalyzer{sess: testSession()}
	router := newTestRouter(analyzer, nil, nil)

	buf, contentType := multipartBody(t, []string{"front.png"}, pngUpload)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, testSessionID, body["sessionId"])

	result := body["analysis"].(map[string]any)
	require.Equal(t, "Carhartt", result["brand"].(map[string]any)["name"])

	require.Len(t, analyzer.gotImages, 1)
	require.Equal(t, "front.png", analyzer.gotImages[0].Filename)
	require.Equal(t, "image/png", analyzer.gotImages[0].MIMEType)
}

func TestAnalyzeRejectsMissingImages(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	buf, contentType := multipartBody(t, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "at least one image")
}

func TestAnalyzeRejectsTooManyImages(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	buf, contentType := multipartBody(t, []string{"a.png", "b.png", "c.png", "d.png"}, pngUpload)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "too many images")
}

func TestAnalyzeRejectsNonImageUpload(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	buf, contentType := multipartBody(t, []string{"notes.txt"}, []byte("plain text, no image here at all"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "unsupported image type")
}

func TestAnalyzeRejectsNonMultipart(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"images": []}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeModelNotConfigured(t *testing.T) {
	router := newTestRouter(&stubAnalyzer{err: analysis.ErrNotConfigured}, nil, nil)

	buf, contentType := multipartBody(t, []string{"front.png"}, pngUpload)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "not configured")
}

func TestAnalyzeQuotaExceeded(t *testing.T) {
	quotaErr := &analysis.UpstreamError{Provider: "gemini", Status: 429, Message: "quota", Err: analysis.ErrQuotaExceeded}
	router := newTestRouter(&stubAnalyzer{err: quotaErr}, nil, nil)

	buf, contentType := multipartBody(t, []string{"front.png"}, pngUpload)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAnalyzeUnparseableModelOutput(t *testing.T) {
	parseErr := &analysis.UnparseableError{Stage: "price", Raw: "no json here"}
	router := newTestRouter(&stubAnalyzer{err: parseErr}, nil, nil)

	buf, contentType := multipartBody(t, []string{"front.png"}, pngUpload)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "analysis failed", body["error"])
	require.NotContains(t, body["details"], "no json here")
}

func TestChatHappyPath(t *testing.T) {
	chatter := &stubChatter{answer: "List it around $42."}
	router := newTestRouter(nil, chatter, nil)

	payload := `{"sessionId": "` + testSessionID + `", "message": "what price?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "List it around $42.", decodeBody(t, rec)["response"])
	require.Equal(t, "what price?", chatter.gotMessage)
}

func TestChatValidation(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	for _, payload := range []string{
		`{"message": "no session"}`,
		`{"sessionId": "` + testSessionID + `"}`,
		`{"sessionId": "not-a-uuid", "message": "hi"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, "payload: %s", payload)
	}
}

func TestChatExpiredSession(t *testing.T) {
	router := newTestRouter(nil, &stubChatter{err: session.ErrNotFound}, nil)

	payload := `{"sessionId": "` + testSessionID + `", "message": "anyone home?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, decodeBody(t, rec)["error"], "expired")
}

func TestSessionGet(t *testing.T) {
	router := newTestRouter(nil, nil, &stubSessions{sess: testSession()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/"+testSessionID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, testSessionID, body["sessionId"])
	require.NotNil(t, body["conversation"])
}

func TestSessionGetUnknown(t *testing.T) {
	router := newTestRouter(nil, nil, &stubSessions{err: session.ErrNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/"+testSessionID, nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionGetBadID(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/short", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "clot_http_requests_total")
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	router := newTestRouter(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
