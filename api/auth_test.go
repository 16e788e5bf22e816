package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/posbackup/api"
	"github.com/garnizeh/posbackup/internal/config"
)

func adminAccount(t *testing.T, username, password string) config.AdminConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return config.AdminConfig{Username: username, PasswordHash: string(hash)}
}

func TestAuthHandlers(t *testing.T) {
	secret := "testsecret"
	tokenDur := 1 * time.Hour
	admin := adminAccount(t, "manager", "hunter2")

	tests := []struct {
		name       string
		path       string
		admin      config.AdminConfig
		body       any
		wantStatus int
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "Signin_InvalidRequest",
			path:       "/signin",
			admin:      admin,
			body:       "not a json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Username",
			path:       "/signin",
			admin:      admin,
			body:       map[string]string{"password": "nop"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_MissingFields_Password",
			path:       "/signin",
			admin:      admin,
			body:       map[string]string{"username": "manager"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Signin_UnknownUser",
			path:       "/signin",
			admin:      admin,
			body:       map[string]string{"username": "cashier", "password": "hunter2"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signin_WrongPassword",
			path:       "/signin",
			admin:      admin,
			body:       map[string]string{"username": "manager", "password": "wrongpw"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signin_Disabled",
			path:       "/signin",
			admin:      config.AdminConfig{Username: "manager"},
			body:       map[string]string{"username": "manager", "password": "hunter2"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Signin_Success",
			path:       "/signin",
			admin:      admin,
			body:       map[string]string{"username": "manager", "password": "hunter2"},
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				var ar struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(b, &ar); err != nil {
					t.Fatalf("unmarshal token: %v", err)
				}
				tok, err := jwt.Parse(ar.Token, func(token *jwt.Token) (any, error) { return []byte(secret), nil })
				if err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				claims, ok := tok.Claims.(jwt.MapClaims)
				if !ok {
					t.Fatalf("unexpected claims type %T", tok.Claims)
				}
				if claims["role"] != api.RoleAdmin || claims["sub"] != "manager" {
					t.Fatalf("unexpected claims %v", claims)
				}
				if expF, ok := claims["exp"].(float64); !ok || int64(expF) < time.Now().Unix() {
					t.Fatalf("invalid exp claim")
				}
			},
		},
		{
			name:       "Signout_OK",
			path:       "/signout",
			admin:      admin,
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, b []byte) {
				if !bytes.Contains(b, []byte("signed out")) {
					t.Fatalf("unexpected body: %s", string(b))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := api.NewAuthHandler(tt.admin, secret, tokenDur)

			var bodyReader io.Reader
			if tt.body != nil {
				b, _ := json.Marshal(tt.body)
				bodyReader = bytes.NewReader(b)
			}
			req := httptest.NewRequest(http.MethodPost, tt.path, bodyReader)
			w := httptest.NewRecorder()

			switch tt.path {
			case "/signin":
				handler.Signin(w, req)
			case "/signout":
				handler.Signout(w, req)
			default:
				t.Fatalf("unknown path %s", tt.path)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, data)
			}
		})
	}
}
