package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/deltatracker/achievements"
	"github.com/cppla/deltatracker/analytics"
	"github.com/cppla/deltatracker/config"
	"github.com/cppla/deltatracker/quotes"
	"github.com/cppla/deltatracker/store/storetest"
	"github.com/cppla/deltatracker/utils"
)

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type unlockedData struct {
	Unlocked []achievements.Unlock `json:"unlocked"`
}

func newTestRouter(t *testing.T, cfg config.AppConfig) *gin.Engine {
	t.Helper()
	cfg.GinMode = "test"
	cfg.GinPath = filepath.Join(t.TempDir(), "gin.log")
	cfg.Timezone = "UTC"
	config.Set(cfg)

	st := storetest.New(t)
	engine := achievements.NewEngine(st,
		achievements.WithLocation(time.UTC),
		achievements.WithNotifier(achievements.NewHub(4, nil)))
	return SetupRouter(Deps{
		Engine: engine,
		Stats:  analytics.NewAggregator(st, time.UTC),
		Store:  st,
		Quotes: quotes.NewPool([]string{"only one"}, "en", 1),
	})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func unlockedIDs(t *testing.T, env envelope) []uint {
	t.Helper()
	var d unlockedData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	ids := make([]uint, 0, len(d.Unlocked))
	for _, u := range d.Unlocked {
		ids = append(ids, u.ID)
	}
	return ids
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestHealthAndNoRoute(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	w, env := do(t, r, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK || env.Code != 0 {
		t.Fatalf("health: %d %+v", w.Code, env)
	}
	w, env = do(t, r, http.MethodGet, "/api/v1/nope", nil, "")
	if w.Code != http.StatusNotFound || env.Code != 40400 {
		t.Fatalf("no route: %d %+v", w.Code, env)
	}
}

func TestCreateScanFromRawText(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	w, env := do(t, r, http.MethodPost, "/api/v1/scans", gin.H{"raw_text": " 1,5 M ", "timestamp": base}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var d struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Balance != "1.50M" {
		t.Fatalf("balance = %q", d.Balance)
	}

	_, env = do(t, r, http.MethodPost, "/api/v1/scans", gin.H{"numeric_value": 5_000_000, "timestamp": base.Add(time.Minute)}, "")
	if ids := unlockedIDs(t, env); !contains(ids, achievements.IBelieve) {
		t.Fatalf("expected I Believe!, got %v", ids)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/scans/history?limit=10", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
	var h struct {
		Items []analytics.DeltaRow `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &h); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(h.Items) != 2 || h.Items[0].Direction != analytics.DirectionUp || h.Items[0].DeltaText != "+3.50M" {
		t.Fatalf("unexpected history: %+v", h.Items)
	}
}

func TestCreateScanRejectsBadInput(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	cases := []struct {
		body   interface{}
		status int
		code   int
	}{
		{gin.H{}, http.StatusBadRequest, 40002},
		{gin.H{"raw_text": "abc"}, http.StatusUnprocessableEntity, 42201},
		{gin.H{"numeric_value": 1, "timestamp": "1999-12-31T23:00:00Z"}, http.StatusBadRequest, 40010},
	}
	for _, c := range cases {
		w, env := do(t, r, http.MethodPost, "/api/v1/scans", c.body, "")
		if w.Code != c.status || env.Code != c.code {
			t.Fatalf("body %v: got %d/%d, want %d/%d", c.body, w.Code, env.Code, c.status, c.code)
		}
	}

	w, _ := do(t, r, http.MethodGet, "/api/v1/scans/history?limit=0", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("limit=0: %d", w.Code)
	}
	w, env := do(t, r, http.MethodDelete, "/api/v1/scans/99", nil, "")
	if w.Code != http.StatusNotFound || env.Code != 40402 {
		t.Fatalf("delete missing: %d %+v", w.Code, env)
	}
}

func TestEventsAndUndo(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	w, env := do(t, r, http.MethodPost, "/api/v1/events/tilt", gin.H{"timestamp": base}, "")
	if w.Code != http.StatusOK || len(unlockedIDs(t, env)) != 0 {
		t.Fatalf("tilt: %d %s", w.Code, w.Body.String())
	}

	next := base.Add(24 * time.Hour)
	_, _ = do(t, r, http.MethodPost, "/api/v1/events/cheater", gin.H{"timestamp": next}, "")
	_, env = do(t, r, http.MethodPost, "/api/v1/events/cheater/undo", gin.H{"timestamp": next.Add(2 * time.Second)}, "")
	if ids := unlockedIDs(t, env); !contains(ids, achievements.NotSure) {
		t.Fatalf("expected Not sure, got %v", ids)
	}

	// an event from a game-day that already ended
	w, env = do(t, r, http.MethodPost, "/api/v1/events/red", gin.H{"timestamp": base.Add(-48 * time.Hour)}, "")
	if w.Code != http.StatusConflict || env.Code != 40901 {
		t.Fatalf("stale: %d %+v", w.Code, env)
	}

	w, env = do(t, r, http.MethodGet, "/api/v1/stats/counters", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("counters: %d", w.Code)
	}
	var counters map[string]int64
	if err := json.Unmarshal(env.Data, &counters); err != nil {
		t.Fatalf("decode counters: %v", err)
	}
	if counters["cheaters_today"] != 0 || counters["tilts_today"] != 0 {
		t.Fatalf("unexpected counters: %v", counters)
	}

	// no body stamps the request with the current time
	w, _ = do(t, r, http.MethodPost, "/api/v1/events/activate", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("activate without body: %d %s", w.Code, w.Body.String())
	}
}

func TestQuoteCountsAsRead(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	var d struct {
		Quote string `json:"quote"`
	}
	_, env := do(t, r, http.MethodGet, "/api/v1/quotes/random", nil, "")
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Quote != "only one" {
		t.Fatalf("quote = %q", d.Quote)
	}
}

func TestAchievementsEndpoints(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	w, env := do(t, r, http.MethodGet, "/api/v1/achievements?lang=ru", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Items    []achievements.View `json:"items"`
		Unlocked int                 `json:"unlocked"`
		Total    int                 `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 21 || list.Total != 20 || list.Unlocked != 0 {
		t.Fatalf("unexpected list: %d items, %d/%d", len(list.Items), list.Unlocked, list.Total)
	}

	w, env = do(t, r, http.MethodPost, "/api/v1/achievements/99/tap", nil, "")
	if w.Code != http.StatusNotFound || env.Code != 40401 {
		t.Fatalf("unknown tap: %d %+v", w.Code, env)
	}

	var last []uint
	for i := 0; i < achievements.TapThreshold; i++ {
		_, env = do(t, r, http.MethodPost, "/api/v1/achievements/3/tap",
			gin.H{"timestamp": base.Add(time.Duration(i) * 500 * time.Millisecond)}, "")
		last = unlockedIDs(t, env)
	}
	if !contains(last, achievements.Bruteforce) {
		t.Fatalf("expected Bruteforce on the fifth tap, got %v", last)
	}

	_, env = do(t, r, http.MethodPost, "/api/v1/achievements/easter-egg", gin.H{"timestamp": base.Add(time.Minute)}, "")
	if ids := unlockedIDs(t, env); !contains(ids, achievements.EasterEgg) {
		t.Fatalf("expected easter egg, got %v", ids)
	}

	w, _ = do(t, r, http.MethodPost, "/api/v1/achievements/reset", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset: %d", w.Code)
	}
	_, env = do(t, r, http.MethodGet, "/api/v1/achievements/progress", nil, "")
	var p struct {
		Unlocked int `json:"unlocked"`
	}
	_ = json.Unmarshal(env.Data, &p)
	if p.Unlocked != 0 {
		t.Fatalf("progress after reset: %d", p.Unlocked)
	}
}

func TestStatsAndExport(t *testing.T) {
	r := newTestRouter(t, config.AppConfig{})

	_, _ = do(t, r, http.MethodPost, "/api/v1/scans", gin.H{"numeric_value": 1_000_000, "timestamp": base}, "")
	_, _ = do(t, r, http.MethodPost, "/api/v1/scans", gin.H{"numeric_value": 1_200_000, "timestamp": base.Add(time.Hour)}, "")

	w, env := do(t, r, http.MethodGet, "/api/v1/stats/daily?date=2024-03-10", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("daily: %d %s", w.Code, w.Body.String())
	}
	var st analytics.DayStats
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Scans != 2 || st.ProfitLoss.IntPart() != 200_000 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/stats/daily?date=10.03.2024", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/stats/dashboard", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", w.Code)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/scans/export", nil, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("export: %d %v", w.Code, w.Header())
	}

	w, env = do(t, r, http.MethodDelete, "/api/v1/scans", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("clear: %d", w.Code)
	}
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	_ = json.Unmarshal(env.Data, &cleared)
	if cleared.Deleted != 2 {
		t.Fatalf("cleared %d scans", cleared.Deleted)
	}
}

func TestAuthFlow(t *testing.T) {
	hash, err := utils.HashAccessKey("let-me-in")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	r := newTestRouter(t, config.AppConfig{AuthEnabled: true, JWTSecret: "test-secret", AccessKeyHash: hash})

	w, env := do(t, r, http.MethodGet, "/api/v1/achievements/progress", nil, "")
	if w.Code != http.StatusUnauthorized || env.Code != 40101 {
		t.Fatalf("anonymous: %d %+v", w.Code, env)
	}

	w, env = do(t, r, http.MethodPost, "/api/v1/auth/token", gin.H{"access_key": "nope"}, "")
	if w.Code != http.StatusUnauthorized || env.Code != 40106 {
		t.Fatalf("wrong key: %d %+v", w.Code, env)
	}

	_, env = do(t, r, http.MethodPost, "/api/v1/auth/token", gin.H{"access_key": "let-me-in"}, "")
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &tok); err != nil || tok.Token == "" {
		t.Fatalf("token: %v %s", err, env.Data)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/achievements/progress", nil, tok.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("with token: %d", w.Code)
	}

	w, _ = do(t, r, http.MethodPost, "/api/v1/auth/logout", nil, tok.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	w, env = do(t, r, http.MethodGet, "/api/v1/achievements/progress", nil, tok.Token)
	if w.Code != http.StatusUnauthorized || env.Code != 40104 {
		t.Fatalf("revoked: %d %+v", w.Code, env)
	}
}
