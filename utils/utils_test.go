package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/cppla/deltatracker/config"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  1.23M ", "1.23M"},
		{"<b>456K</b>", "456K"},
		{"<script>alert(1)</script>12", "12"},
	}
	for _, c := range cases {
		if got := SanitizeText(c.in); got != c.want {
			t.Fatalf("SanitizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	long := strings.Repeat("я", MaxRawTextLen+10)
	if got := []rune(SanitizeText(long)); len(got) != MaxRawTextLen {
		t.Fatalf("expected %d runes, got %d", MaxRawTextLen, len(got))
	}
}

func TestAccessKeyHash(t *testing.T) {
	hash, err := HashAccessKey("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckAccessKey(hash, "s3cret") {
		t.Fatalf("expected key to match")
	}
	if CheckAccessKey(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}

func TestTokenRoundTripAndRevoke(t *testing.T) {
	config.Set(config.AppConfig{JWTSecret: "test-secret"})

	tok, claims, err := GenerateToken(time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	parsed, err := ParseToken(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ID != claims.ID {
		t.Fatalf("jti mismatch: %s vs %s", parsed.ID, claims.ID)
	}
	if IsTokenRevoked(claims.ID) {
		t.Fatalf("fresh token must not be revoked")
	}
	RevokeToken(claims.ID, claims.ExpiresAt.Time)
	if !IsTokenRevoked(claims.ID) {
		t.Fatalf("expected token to be revoked")
	}

	if _, err := ParseToken(tok + "x"); err == nil {
		t.Fatalf("expected tampered token to fail")
	}
}

func TestWriteXLSX(t *testing.T) {
	buf, err := WriteXLSX("Scans", []string{"Time", "Balance"}, [][]interface{}{
		{"2024-03-10 09:00", "1.00M"},
		{"2024-03-10 10:00", "1.50M"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Scans")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 || rows[0][1] != "Balance" || rows[2][1] != "1.50M" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestNonNilSerializesEmptyList(t *testing.T) {
	var unlocks []int
	b, err := json.Marshal(gin.H{"unlocked": NonNil(unlocks)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"unlocked":[]}` {
		t.Fatalf("got %s", b)
	}
	if got := NonNil([]int{1, 2}); len(got) != 2 {
		t.Fatalf("non-nil slice changed: %v", got)
	}
}

func TestAbortStopsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reached := false
	r.GET("/x", func(c *gin.Context) {
		Abort(c, http.StatusTooManyRequests, 42901, "rate limit exceeded")
	}, func(c *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if reached {
		t.Fatalf("handler after Abort must not run")
	}
	var resp JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusTooManyRequests || resp.Code != 42901 {
		t.Fatalf("unexpected response %d %+v", w.Code, resp)
	}
}
