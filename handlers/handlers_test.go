package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/biosecret/go-todo/app"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/internal/testutil"
	"github.com/biosecret/go-todo/token"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() {}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	t      *testing.T
	app    *fiber.App
	tokens *token.Service
	events *recorder
}

func newEnv(t *testing.T, name string) *env {
	t.Helper()
	db := testutil.OpenInMemoryDB(t, name)
	tokens := token.NewService("handler-secret", time.Hour)
	rec := &recorder{}
	return &env{
		t:      t,
		app:    app.New(db, handlers.New(tokens, rec, bcrypt.MinCost)),
		tokens: tokens,
		events: rec,
	}
}

func (e *env) do(method, path, tok string, body any) (int, map[string]any) {
	e.t.Helper()
	code, raw := e.raw(method, path, tok, body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			e.t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return code, out
}

func (e *env) raw(method, path, tok string, body any) (int, []byte) {
	e.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		enc, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(enc)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

// user registers and logs in, returning the user id and token.
func (e *env) user(name string) (string, string) {
	e.t.Helper()
	code, body := e.do(http.MethodPost, "/auth/register", "", fiber.Map{
		"username": name, "email": name + "@example.com", "password_hash": "pw-" + name,
	})
	if code != fiber.StatusCreated {
		e.t.Fatalf("register %s: %d %v", name, code, body)
	}
	code, body = e.do(http.MethodPost, "/auth/login", "", fiber.Map{
		"username": name, "password_hash": "pw-" + name,
	})
	if code != fiber.StatusOK {
		e.t.Fatalf("login %s: %d %v", name, code, body)
	}
	return body["id"].(string), body["token"].(string)
}

func (e *env) list(tok, title string) string {
	e.t.Helper()
	code, body := e.do(http.MethodPost, "/lists", tok, fiber.Map{"title": title})
	if code != fiber.StatusCreated {
		e.t.Fatalf("create list: %d %v", code, body)
	}
	return body["id"].(string)
}

func (e *env) item(tok, listID string, fields fiber.Map) string {
	e.t.Helper()
	code, body := e.do(http.MethodPost, "/lists/"+listID+"/items", tok, fields)
	if code != fiber.StatusCreated {
		e.t.Fatalf("create item: %d %v", code, body)
	}
	return body["id"].(string)
}

func TestRegister_Conflict(t *testing.T) {
	e := newEnv(t, "h_conflict")
	e.user("alice")

	code, body := e.do(http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "alice", "email": "new@example.com", "password_hash": "x",
	})
	if code != fiber.StatusConflict {
		t.Fatalf("duplicate username: %d %v", code, body)
	}
	code, _ = e.do(http.MethodPost, "/auth/register", "", fiber.Map{
		"username": "alice2", "email": "alice@example.com", "password_hash": "x",
	})
	if code != fiber.StatusConflict {
		t.Fatalf("duplicate email: %d", code)
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t, "h_regval")
	long := string(bytes.Repeat([]byte("a"), 73))
	cases := []any{
		fiber.Map{"email": "a@x.com", "password_hash": "h"},
		fiber.Map{"username": "a", "password_hash": "h"},
		fiber.Map{"username": "a", "email": "not-an-email", "password_hash": "h"},
		fiber.Map{"username": "a", "email": "a@x.com"},
		fiber.Map{"username": "a", "email": "a@x.com", "password_hash": long},
		"{not json",
	}
	for i, body := range cases {
		code, out := e.do(http.MethodPost, "/auth/register", "", body)
		if code != fiber.StatusBadRequest {
			t.Fatalf("case %d: status %d %v", i, code, out)
		}
		if out["error"] == nil {
			t.Fatalf("case %d: missing error message", i)
		}
	}
}

func TestLogin_InvalidCredentialsSameShape(t *testing.T) {
	e := newEnv(t, "h_login")
	e.user("alice")

	codeWrong, wrong := e.do(http.MethodPost, "/auth/login", "", fiber.Map{"username": "alice", "password_hash": "nope"})
	codeGhost, ghost := e.do(http.MethodPost, "/auth/login", "", fiber.Map{"username": "ghost", "password_hash": "nope"})
	if codeWrong != fiber.StatusUnauthorized || codeGhost != fiber.StatusUnauthorized {
		t.Fatalf("statuses: %d %d", codeWrong, codeGhost)
	}
	if fmt.Sprint(wrong) != fmt.Sprint(ghost) {
		t.Fatalf("bodies differ: %v vs %v", wrong, ghost)
	}
}

func TestLogout_Acknowledges(t *testing.T) {
	e := newEnv(t, "h_logout")
	code, body := e.do(http.MethodPost, "/auth/logout", "", nil)
	if code != fiber.StatusOK || body["message"] == "" {
		t.Fatalf("logout: %d %v", code, body)
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	e := newEnv(t, "h_protected")
	expired, err := token.NewService("handler-secret", time.Hour).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue("u", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	routes := []struct{ method, path string }{
		{http.MethodGet, "/lists"},
		{http.MethodPost, "/lists"},
		{http.MethodGet, "/lists/x"},
		{http.MethodPut, "/lists/x"},
		{http.MethodDelete, "/lists/x"},
		{http.MethodGet, "/lists/x/items"},
		{http.MethodPost, "/lists/x/items"},
		{http.MethodGet, "/lists/x/items/y"},
		{http.MethodPut, "/lists/x/items/y"},
		{http.MethodDelete, "/lists/x/items/y"},
	}
	for _, r := range routes {
		for _, tok := range []string{"", "garbage", expired} {
			code, body := e.do(r.method, r.path, tok, nil)
			if code != fiber.StatusUnauthorized {
				t.Fatalf("%s %s with %q: %d %v", r.method, r.path, tok, code, body)
			}
		}
	}
	code, body := e.do(http.MethodGet, "/lists", expired, nil)
	if code != fiber.StatusUnauthorized || body["error"] != "token has expired" {
		t.Fatalf("expired: %d %v", code, body)
	}
}

func TestLists_OwnerComesFromToken(t *testing.T) {
	e := newEnv(t, "h_owner")
	aliceID, alice := e.user("alice")
	bobID, bob := e.user("bob")

	code, body := e.do(http.MethodPost, "/lists", alice, fiber.Map{"title": "Mine", "user_id": bobID})
	if code != fiber.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}
	id := body["id"].(string)

	code, got := e.do(http.MethodGet, "/lists/"+id, alice, nil)
	if code != fiber.StatusOK || got["user_id"] != aliceID {
		t.Fatalf("owner not taken from token: %d %v", code, got)
	}

	for _, r := range []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, fiber.Map{"title": "stolen"}},
		{http.MethodDelete, nil},
	} {
		if code, _ := e.do(r.method, "/lists/"+id, bob, r.body); code != fiber.StatusNotFound {
			t.Fatalf("bob %s: got %d, want 404", r.method, code)
		}
	}
	if code, _ := e.do(http.MethodGet, "/lists/"+id+"/items", bob, nil); code != fiber.StatusNotFound {
		t.Fatalf("bob items: got %d", code)
	}
	if code, _ := e.do(http.MethodPost, "/lists/"+id+"/items", bob, fiber.Map{"title": "x"}); code != fiber.StatusNotFound {
		t.Fatalf("bob create item: got %d", code)
	}

	_, raw := e.raw(http.MethodGet, "/lists", bob, nil)
	if string(raw) != "[]" {
		t.Fatalf("bob sees lists: %s", raw)
	}
}

func TestLists_UpdateDeleteAndMissing(t *testing.T) {
	e := newEnv(t, "h_listcrud")
	_, tok := e.user("alice")
	id := e.list(tok, "Groceries")

	if code, body := e.do(http.MethodPut, "/lists/"+id, tok, fiber.Map{"title": "Food"}); code != fiber.StatusOK {
		t.Fatalf("update: %d %v", code, body)
	}
	if code, body := e.do(http.MethodGet, "/lists/"+id, tok, nil); code != fiber.StatusOK || body["title"] != "Food" {
		t.Fatalf("get after update: %d %v", code, body)
	}
	if code, _ := e.do(http.MethodPut, "/lists/"+id, tok, fiber.Map{"title": "  "}); code != fiber.StatusBadRequest {
		t.Fatalf("blank title: %d", code)
	}
	if code, _ := e.do(http.MethodDelete, "/lists/"+id, tok, nil); code != fiber.StatusOK {
		t.Fatalf("delete: %d", code)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		code, body := e.do(method, "/lists/"+id, tok, nil)
		if code != fiber.StatusNotFound || body["error"] != "list not found" {
			t.Fatalf("%s missing: %d %v", method, code, body)
		}
	}
	if code, _ := e.do(http.MethodPut, "/lists/"+id, tok, fiber.Map{"title": "x"}); code != fiber.StatusNotFound {
		t.Fatalf("update missing: %d", code)
	}
}

func TestLists_PaginationAndFilter(t *testing.T) {
	e := newEnv(t, "h_listpage")
	_, tok := e.user("alice")
	for i := 0; i < 12; i++ {
		e.list(tok, fmt.Sprintf("List %02d", i))
	}
	e.list(tok, "Groceries")

	var all []map[string]any
	_, raw := e.raw(http.MethodGet, "/lists?per_page=100", tok, nil)
	if err := json.Unmarshal(raw, &all); err != nil || len(all) != 13 {
		t.Fatalf("all lists: %v len=%d", err, len(all))
	}

	var def []map[string]any
	_, raw = e.raw(http.MethodGet, "/lists", tok, nil)
	if err := json.Unmarshal(raw, &def); err != nil || len(def) != 10 {
		t.Fatalf("default page size: %v len=%d", err, len(def))
	}

	var second []map[string]any
	_, raw = e.raw(http.MethodGet, "/lists?page=2&per_page=5", tok, nil)
	if err := json.Unmarshal(raw, &second); err != nil || len(second) != 5 || second[0]["id"] != all[5]["id"] {
		t.Fatalf("page 2: %v %s", err, raw)
	}

	var groceries []map[string]any
	_, raw = e.raw(http.MethodGet, "/lists?title=GROC", tok, nil)
	if err := json.Unmarshal(raw, &groceries); err != nil || len(groceries) != 1 {
		t.Fatalf("filter: %v %s", err, raw)
	}

	for _, q := range []string{"page=0", "page=-2", "per_page=abc", "per_page=0", "page=1000000000000000000&per_page=10"} {
		if code, _ := e.do(http.MethodGet, "/lists?"+q, tok, nil); code != fiber.StatusBadRequest {
			t.Fatalf("%s: got %d, want 400", q, code)
		}
	}
}

func TestItems_CRUD(t *testing.T) {
	e := newEnv(t, "h_items")
	_, tok := e.user("alice")
	listID := e.list(tok, "Chores")
	base := "/lists/" + listID + "/items/"

	itemID := e.item(tok, listID, fiber.Map{
		"title": "Laundry", "description": "whites", "status": "in_progress",
		"priority": 2, "due_date": "2026-11-01T10:00:00Z",
	})

	code, got := e.do(http.MethodGet, base+itemID, tok, nil)
	if code != fiber.StatusOK || got["status"] != "in_progress" || got["priority"] != float64(2) || got["description"] != "whites" {
		t.Fatalf("get: %d %v", code, got)
	}
	if got["due_date"] != "2026-11-01T10:00:00Z" {
		t.Fatalf("due_date: %v", got["due_date"])
	}

	if code, body := e.do(http.MethodPut, base+itemID, tok, fiber.Map{"status": "done"}); code != fiber.StatusOK {
		t.Fatalf("update: %d %v", code, body)
	}
	_, got = e.do(http.MethodGet, base+itemID, tok, nil)
	if got["status"] != "done" || got["title"] != "Laundry" || got["description"] != "whites" {
		t.Fatalf("partial update: %v", got)
	}

	if code, body := e.do(http.MethodPut, base+itemID, tok, `{"description": null, "due_date": null}`); code != fiber.StatusOK {
		t.Fatalf("clear fields: %d %v", code, body)
	}
	_, got = e.do(http.MethodGet, base+itemID, tok, nil)
	if got["description"] != nil || got["due_date"] != nil || got["status"] != "done" {
		t.Fatalf("after clearing: %v", got)
	}

	if code, _ := e.do(http.MethodPut, base+itemID, tok, fiber.Map{}); code != fiber.StatusBadRequest {
		t.Fatalf("empty update: %d", code)
	}
	if code, _ := e.do(http.MethodPut, base+itemID, tok, fiber.Map{"status": "archived"}); code != fiber.StatusBadRequest {
		t.Fatalf("bad status: %d", code)
	}
	if code, _ := e.do(http.MethodPost, "/lists/"+listID+"/items", tok, fiber.Map{"title": "x", "priority": "high"}); code != fiber.StatusBadRequest {
		t.Fatalf("bad priority: %d", code)
	}
	if code, _ := e.do(http.MethodPost, "/lists/"+listID+"/items", tok, fiber.Map{"description": "no title"}); code != fiber.StatusBadRequest {
		t.Fatalf("missing title: %d", code)
	}

	if code, _ := e.do(http.MethodDelete, base+itemID, tok, nil); code != fiber.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		code, body := e.do(method, base+itemID, tok, nil)
		if code != fiber.StatusNotFound || body["error"] != "item not found" {
			t.Fatalf("%s missing item: %d %v", method, code, body)
		}
	}
	if code, _ := e.do(http.MethodPut, base+itemID, tok, fiber.Map{"title": "x"}); code != fiber.StatusNotFound {
		t.Fatalf("update missing item: %d", code)
	}
	if code, _ := e.do(http.MethodGet, "/lists/missing/items", tok, nil); code != fiber.StatusNotFound {
		t.Fatalf("items of missing list: %d", code)
	}
}

func TestItems_PaginationTotal(t *testing.T) {
	e := newEnv(t, "h_itempage")
	_, tok := e.user("alice")
	listID := e.list(tok, "Big")
	for i := 0; i < 7; i++ {
		e.item(tok, listID, fiber.Map{"title": fmt.Sprintf("step %d", i)})
	}
	e.item(tok, listID, fiber.Map{"title": "Milk"})

	code, body := e.do(http.MethodGet, "/lists/"+listID+"/items?page=3&per_page=3", tok, nil)
	if code != fiber.StatusOK {
		t.Fatalf("page 3: %d %v", code, body)
	}
	if len(body["data"].([]any)) != 2 || body["total"] != float64(8) || body["page"] != float64(3) || body["limit"] != float64(3) {
		t.Fatalf("page 3 body: %v", body)
	}

	_, body = e.do(http.MethodGet, "/lists/"+listID+"/items?title=step&per_page=2", tok, nil)
	if len(body["data"].([]any)) != 2 || body["total"] != float64(7) {
		t.Fatalf("filtered body: %v", body)
	}

	_, body = e.do(http.MethodGet, "/lists/"+listID+"/items?page=9", tok, nil)
	if len(body["data"].([]any)) != 0 || body["total"] != float64(8) {
		t.Fatalf("past the end: %v", body)
	}

	code, body = e.do(http.MethodGet, "/lists/"+listID+"/items?page=1000000000000000000&per_page=10", tok, nil)
	if code != fiber.StatusBadRequest || body["error"] != "page: is too large" {
		t.Fatalf("huge page: %d %v", code, body)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	e := newEnv(t, "h_events")
	_, tok := e.user("alice")
	listID := e.list(tok, "Evented")
	itemID := e.item(tok, listID, fiber.Map{"title": "a"})
	e.do(http.MethodPut, "/lists/"+listID+"/items/"+itemID, tok, fiber.Map{"priority": 5})
	e.do(http.MethodDelete, "/lists/"+listID+"/items/"+itemID, tok, nil)
	e.do(http.MethodPut, "/lists/"+listID, tok, fiber.Map{"title": "Renamed"})
	e.do(http.MethodDelete, "/lists/"+listID, tok, nil)
	// Failed mutations publish nothing.
	e.do(http.MethodDelete, "/lists/"+listID, tok, nil)

	want := []events.Type{
		events.ListCreated, events.ItemCreated, events.ItemUpdated,
		events.ItemDeleted, events.ListUpdated, events.ListDeleted,
	}
	got := e.events.types()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}
