package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/mtihani/apps/api/echo"
	"github.com/trezcool/mtihani/core/user"
	testutil "github.com/trezcool/mtihani/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Taken", "taken", "taken@test.cd", "", false, true)

	tests := []httpTest{
		{
			name: "username too short", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{Name: "Jay", Username: "ja", Password: "v3ry/s3cret", PasswordConfirm: "v3ry/s3cret"}),
		},
		{
			name: "password mismatch", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{Name: "Jay", Username: "jayjay", Password: "v3ry/s3cret", PasswordConfirm: "nope"}),
		},
		{
			name: "password too short", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{Name: "Jay", Username: "jayjay", Password: "lol", PasswordConfirm: "lol"}),
		},
		{
			name: "username taken", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "Jay", Username: "taken", Password: "v3ry/s3cret", PasswordConfirm: "v3ry/s3cret"}),
			wantData: marchallObj(t, map[string]string{"username": "a user with this username already exists"}),
		},
		{
			name: "registered", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{Name: "Jay", Username: "jayjay", Email: "jay@test.cd", Password: "v3ry/s3cret", PasswordConfirm: "v3ry/s3cret", IsAdmin: true}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/register"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if usr.Username != "jayjay" {
					t.Errorf("Username = %q, want %q", usr.Username, "jayjay")
				}
				// self-registration can never grant admin rights
				if usr.IsAdmin {
					t.Error("self-registered user must not be admin")
				}
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "s3cret/pwd", false, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "s3cret/pwd", false, false)

	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.LoginRequest{}),
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "ndog", Password: "s3cret/pwd"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "logged in", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "s3cret/pwd"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed: %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog", "ndog@test.cd", "", false, false)
	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     usr.Username,
	}
	unrefreshableToken, err := echoapi.GenerateToken(conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed: %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Hero", "hero", "hero@test.cd", "", false, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", true, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, usr), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, usr, admin)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
