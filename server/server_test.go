package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/Chative-Travel-Concierge/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Concierge/agent/metrics"
	statex "github.com/tanpawarit/Chative-Travel-Concierge/agent/state"
	ledgerx "github.com/tanpawarit/Chative-Travel-Concierge/pkg/ledger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChat struct {
	mu     sync.Mutex
	reply  contractx.Reply
	err    error
	asked  []string
	resets []string
}

func (f *fakeChat) HandleMessage(_ context.Context, sessionID, text string) (contractx.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, sessionID+":"+text)
	if f.err != nil {
		return contractx.Reply{}, f.err
	}
	return f.reply, nil
}

func (f *fakeChat) ResetSession(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sessionID)
	return true
}

func newTestServer(t *testing.T, chat *fakeChat, store statex.TranscriptStore, opts ...Option) *Server {
	t.Helper()
	s, err := New(chat, store, Config{}, opts...)
	require.NoError(t, err)
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestNewRequiresChatService(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, Config{})
	require.Error(t, err)
}

func TestIndexIssuesAndKeepsSessionCookie(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeChat{}, nil)
	s.newID = func() string { return "fixed-id" }

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "fixed-id", decode(t, rec)["session_id"])
	require.Contains(t, rec.Header().Get("Set-Cookie"), "session_id=fixed-id")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "existing"})
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, "existing", decode(t, rec)["session_id"])
}

func TestChatRejectsMissingFields(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{}
	s := newTestServer(t, chat, nil)

	for _, body := range []any{
		map[string]string{"message": "hi"},
		map[string]string{"session_id": "s1"},
		map[string]string{"message": "  ", "session_id": "s1"},
	} {
		rec := postJSON(t, s.Handler(), "/chat", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"Missing message or session ID"}`, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, chat.asked)
}

func TestChatReturnsTextAndRecordsTranscript(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: contractx.Reply{Text: "Here are some hotels in Goa."}}
	store := statex.NewMemoryTranscriptStore(5)
	s := newTestServer(t, chat, store)

	rec := postJSON(t, s.Handler(), "/chat", map[string]string{"message": " hotels in goa ", "session_id": "s1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"response":"Here are some hotels in Goa."}`, rec.Body.String())
	require.Equal(t, []string{"s1:hotels in goa"}, chat.asked)

	exchanges, err := store.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	require.Equal(t, "hotels in goa", exchanges[0].User)
	require.Equal(t, "Here are some hotels in Goa.", exchanges[0].Bot)
}

func TestChatMarksCheckoutFragmentAsHTML(t *testing.T) {
	t.Parallel()

	fragment := `<button id="payNowBtn_o1">Pay</button><script>new Razorpay({})</script>`
	s := newTestServer(t, &fakeChat{reply: contractx.Reply{Text: fragment}}, nil)

	rec := postJSON(t, s.Handler(), "/chat", map[string]string{"message": "book it", "session_id": "s1"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "html", out["type"])
	require.Equal(t, fragment, out["response"])
}

func TestChatResetClearsTranscript(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{reply: contractx.Reply{Text: "first"}}
	store := statex.NewMemoryTranscriptStore(5)
	s := newTestServer(t, chat, store)

	postJSON(t, s.Handler(), "/chat", map[string]string{"message": "hi", "session_id": "s1"})
	chat.reply = contractx.Reply{Text: "New conversation started.", Reset: true}
	rec := postJSON(t, s.Handler(), "/chat", map[string]string{"message": "bye", "session_id": "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	exchanges, err := store.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Empty(t, exchanges)
}

func TestChatServiceError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeChat{err: errors.New("boom")}, nil)
	rec := postJSON(t, s.Handler(), "/chat", map[string]string{"message": "hi", "session_id": "s1"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStartSessionResetsAndClears(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{}
	store := statex.NewMemoryTranscriptStore(5)
	require.NoError(t, store.Append(context.Background(), "s1", statex.Exchange{User: "hi", Bot: "hello"}))
	s := newTestServer(t, chat, store)

	rec := postJSON(t, s.Handler(), "/start_session", map[string]string{"session_id": "s1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, []string{"s1"}, chat.resets)

	exchanges, err := store.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Empty(t, exchanges)

	rec = postJSON(t, s.Handler(), "/start_session", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, chat.resets, 1)
}

func TestTranscriptEndpointWithRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	store, err := statex.NewRedisTranscriptStoreFromURL("redis://" + mr.Addr())
	require.NoError(t, err)

	s := newTestServer(t, &fakeChat{reply: contractx.Reply{Text: "Deals in Delhi"}}, store)
	postJSON(t, s.Handler(), "/chat", map[string]string{"message": "deals", "session_id": "s9"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transcript/s9", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		SessionID string            `json:"session_id"`
		Exchanges []statex.Exchange `json:"exchanges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "s9", out.SessionID)
	require.Len(t, out.Exchanges, 1)
	require.Equal(t, "Deals in Delhi", out.Exchanges[0].Bot)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metricsx.MustNewMetrics(reg).ObserveReset("endpoint")
	s := newTestServer(t, &fakeChat{}, nil, WithGatherer(reg))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "concierge_session_resets_total")
}

type fakeOrders struct {
	records []ledgerx.OrderRecord
	err     error
	limits  []int
}

func (f *fakeOrders) Recent(_ context.Context, sessionID string, limit int) ([]ledgerx.OrderRecord, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	var out []ledgerx.OrderRecord
	for _, rec := range f.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func getPath(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestOrdersEndpointListsLedgerRecords(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{records: []ledgerx.OrderRecord{
		{ID: 2, SessionID: "s1", OfferID: "5562", Quantity: 2, Amount: 998, OrderRef: "order_b"},
		{ID: 1, SessionID: "s2", OfferID: "5561", Quantity: 1, Amount: 499, OrderRef: "order_a"},
	}}
	s := newTestServer(t, &fakeChat{}, nil, WithOrders(orders))

	rec := getPath(s.Handler(), "/orders/s1?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		SessionID string                `json:"session_id"`
		Orders    []ledgerx.OrderRecord `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "s1", out.SessionID)
	require.Len(t, out.Orders, 1)
	require.Equal(t, "order_b", out.Orders[0].OrderRef)
	require.Equal(t, "5562", out.Orders[0].OfferID)
	require.Equal(t, []int{3}, orders.limits)

	rec = getPath(s.Handler(), "/orders/s1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []int{3, defaultOrderLimit}, orders.limits)

	rec = getPath(s.Handler(), "/orders/nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"session_id":"nobody","orders":[]}`, rec.Body.String())
}

func TestOrdersEndpointErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeChat{}, nil, WithOrders(&fakeOrders{}))
	for _, path := range []string{"/orders/s1?limit=0", "/orders/s1?limit=many"} {
		rec := getPath(s.Handler(), path)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	s = newTestServer(t, &fakeChat{}, nil, WithOrders(&fakeOrders{err: errors.New("db down")}))
	rec := getPath(s.Handler(), "/orders/s1")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOrdersEndpointWithoutLedger(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeChat{}, nil)
	rec := getPath(s.Handler(), "/orders/s1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"session_id":"s1","orders":[]}`, rec.Body.String())
}

// Not parallel: swaps the global logger.
func TestMalformedBodyIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	chat := &fakeChat{}
	s := newTestServer(t, chat, nil)

	for _, path := range []string{"/chat", "/start_session"} {
		buf.Reset()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		s.Handler().ServeHTTP(httptest.NewRecorder(), req)
		require.Contains(t, buf.String(), "request body not bound", path)
		require.Contains(t, buf.String(), `"path":"`+path+`"`, path)
	}
	require.Empty(t, chat.asked)
	require.Empty(t, chat.resets)
}
