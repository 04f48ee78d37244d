package app

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/internal/testutil"
	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"
)

// serve runs the app on an in-memory listener and returns a fasthttp
// client dialing it.
func serve(t *testing.T, name string) *fasthttp.Client {
	t.Helper()
	db := testutil.OpenInMemoryDB(t, name)
	a := New(db, handlers.New(token.NewService("wire-secret", time.Hour), nil, bcrypt.MinCost))

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = a.Listener(ln) }()
	t.Cleanup(func() {
		_ = a.ShutdownWithTimeout(time.Second)
		_ = ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}
}

func send(t *testing.T, c *fasthttp.Client, method, path, auth string, body []byte) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://todo.test" + path)
	req.Header.SetMethod(method)
	if auth != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, auth)
	}
	if body != nil {
		req.Header.SetContentType(fiber.MIMEApplicationJSON)
		req.SetBody(body)
	}
	if err := c.DoTimeout(req, resp, 5*time.Second); err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func TestServer_AuthorizationHeaderOverTheWire(t *testing.T) {
	c := serve(t, "wire")

	if code, body := send(t, c, fasthttp.MethodGet, "/health", "", nil); code != fiber.StatusOK {
		t.Fatalf("health: %d %s", code, body)
	}

	code, body := send(t, c, fasthttp.MethodPost, "/auth/register", "",
		[]byte(`{"username":"alice","email":"a@x.com","password_hash":"h1"}`))
	if code != fiber.StatusCreated {
		t.Fatalf("register: %d %s", code, body)
	}
	code, body = send(t, c, fasthttp.MethodPost, "/auth/login", "",
		[]byte(`{"username":"alice","password_hash":"h1"}`))
	if code != fiber.StatusOK {
		t.Fatalf("login: %d %s", code, body)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil || login.Token == "" {
		t.Fatalf("login body: %s (%v)", body, err)
	}

	cases := []struct {
		auth string
		code int
	}{
		{"", fiber.StatusUnauthorized},
		{"Basic " + login.Token, fiber.StatusUnauthorized},
		{"bearer " + login.Token, fiber.StatusOK},
		{"Bearer " + login.Token, fiber.StatusOK},
	}
	for _, tc := range cases {
		if code, body := send(t, c, fasthttp.MethodGet, "/lists", tc.auth, nil); code != tc.code {
			t.Fatalf("auth %q: %d %s, want %d", tc.auth, code, body, tc.code)
		}
	}
}
