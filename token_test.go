package portalauth

import (
	"testing"
	"time"
)

func TestTokenExpired(t *testing.T) {
	cases := []struct {
		name  string
		token string
		skew  time.Duration
		want  bool
	}{
		{
			name:  "expired token",
			token: unsignedJWT(t, time.Now().Add(-time.Minute)),
			want:  true,
		},
		{
			name:  "live token",
			token: unsignedJWT(t, time.Now().Add(time.Hour)),
			want:  false,
		},
		{
			name:  "token inside skew window",
			token: unsignedJWT(t, time.Now().Add(10*time.Second)),
			skew:  30 * time.Second,
			want:  true,
		},
		{
			name:  "opaque token never expires locally",
			token: "not-a-jwt",
			want:  false,
		},
		{
			name:  "jwt without exp never expires locally",
			token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1MSJ9.",
			want:  false,
		},
		{
			name:  "empty token never expires locally",
			token: "",
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tokenExpired(tc.token, tc.skew); got != tc.want {
				t.Fatalf("tokenExpired(%q, %v) = %v, want %v", tc.token, tc.skew, got, tc.want)
			}
		})
	}
}
