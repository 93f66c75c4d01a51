package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("admin", RoleAdmin, "qrattend", "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(tok.Value, "k", "qrattend")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "admin" || claims.Role != RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
	if _, err := Parse(tok.Value, "other-key", "qrattend"); err == nil {
		t.Fatal("wrong key must fail")
	}
	if _, err := Parse(tok.Value, "k", "someone-else"); err == nil {
		t.Fatal("issuer mismatch must fail")
	}
}

func TestParseExpired(t *testing.T) {
	tok, err := Issue("admin", RoleAdmin, "qrattend", "k", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tok.Value, "k", "qrattend"); err == nil {
		t.Fatal("expired token must fail")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatal("matching password rejected")
	}
	if CheckPassword(hash, "nope") || CheckPassword("", "s3cret") {
		t.Fatal("mismatch accepted")
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireRole("k", "qrattend", RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	admin, _ := Issue("admin", RoleAdmin, "qrattend", "k", time.Minute)
	scanner, _ := Issue("device-1", "scanner", "qrattend", "k", time.Minute)

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer garbage", http.StatusUnauthorized},
		{"Bearer " + scanner.Value, http.StatusForbidden},
		{"Bearer " + admin.Value, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Errorf("header %.20q: status %d, want %d", tc.header, rr.Code, tc.want)
		}
	}
}
