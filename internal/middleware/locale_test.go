package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name           string
		xLocale        string
		acceptLanguage string
		want           string
	}{
		{name: "x-locale wins", xLocale: "es-MX", acceptLanguage: "ja", want: "es"},
		{name: "accept-language", acceptLanguage: "id-ID,id;q=0.9,en;q=0.8", want: "id"},
		{name: "accept-language with quality", acceptLanguage: "ja;q=0.9,en;q=0.5", want: "ja"},
		{name: "no hints use fallback", want: "en"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.xLocale != "" {
				req.Header.Set("X-Locale", tc.xLocale)
			}
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}
			if got := detectLocale(req, "en"); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleMiddleware_TokenLocaleWins(t *testing.T) {
	var got string
	handler := Locale("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ja")
	req = req.WithContext(context.WithValue(req.Context(), LocaleKey, "es"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "es" {
		t.Fatalf("locale = %q, want token locale %q", got, "es")
	}
}

func TestResolveCountry_HeaderHint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-IPCountry", "de")
	if got := resolveCountry(req, nil); got != "DE" {
		t.Fatalf("country = %q, want DE", got)
	}
}

func TestLocaleMiddleware_CountryOnContext(t *testing.T) {
	var got string
	handler := Locale("en", func(ip string) (string, error) { return "FR", nil })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = CountryFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:443"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "FR" {
		t.Fatalf("country = %q, want FR", got)
	}
}
