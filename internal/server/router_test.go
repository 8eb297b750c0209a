package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayush/blog-api/internal/auth"
	"github.com/ayush/blog-api/internal/models"
	"github.com/ayush/blog-api/internal/store"
)

type memCovers struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memCovers) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memCovers) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, "", models.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.types[key], nil
}

func (m *memCovers) Remove(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := store.NewMemoryStore()
	srv := httptest.NewServer(NewRouter(Deps{
		Auth:        auth.NewService("test-secret"),
		Users:       db,
		Posts:       db,
		Covers:      &memCovers{objects: map[string][]byte{}, types: map[string]string{}},
		CORSOrigins: []string{"http://localhost:3000"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, b)
	}
}

type errorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
}

func registerUser(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/users/register", "", map[string]string{
		"name": name, "email": email, "password": "pw123456",
	})
	expectStatus(t, resp, http.StatusCreated)
	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &out)
	return out.Token
}

func createPost(t *testing.T, srv *httptest.Server, token, title string) string {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/posts", token, map[string]string{"title": title, "content": "body"})
	expectStatus(t, resp, http.StatusCreated)
	var out models.PostView
	decodeBody(t, resp, &out)
	return out.PostID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestRegisterLoginProfile(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/users/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "pw123456", "phoneNumber": "9876543210",
	})
	expectStatus(t, resp, http.StatusCreated)
	var reg map[string]any
	decodeBody(t, resp, &reg)
	user, _ := reg["user"].(map[string]any)
	if reg["token"] == "" || user["userId"] == "" || user["name"] != "Alice" {
		t.Fatalf("unexpected register body %v", reg)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password leaked in register response")
	}

	resp = do(t, srv, http.MethodPost, "/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "pw123456",
	})
	expectStatus(t, resp, http.StatusOK)
	var login struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &login)

	resp = do(t, srv, http.MethodGet, "/users/profile", login.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	var profile map[string]any
	decodeBody(t, resp, &profile)
	if profile["userId"] != user["userId"] || profile["phoneNumber"] != "9876543210" {
		t.Errorf("unexpected profile %v", profile)
	}
	if _, leaked := profile["password"]; leaked {
		t.Error("password leaked in profile")
	}
}

func TestRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"email": "a@example.com", "password": "pw"}},
		{"bad email", map[string]string{"name": "A", "email": "nope", "password": "pw"}},
		{"missing password", map[string]string{"name": "A", "email": "a@example.com"}},
		{"bad phone", map[string]string{"name": "A", "email": "a@example.com", "password": "pw", "phoneNumber": "123"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPost, "/users/register", "", tc.body)
			expectStatus(t, resp, http.StatusBadRequest)
			var body errorBody
			decodeBody(t, resp, &body)
			var msgs []string
			if err := json.Unmarshal(body.Message, &msgs); err != nil || len(msgs) == 0 {
				t.Errorf("expected a list of messages, got %s", body.Message)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "Alice", "alice@example.com")

	resp := do(t, srv, http.MethodPost, "/users/register", "", map[string]string{
		"name": "Again", "email": "alice@example.com", "password": "x",
	})
	expectStatus(t, resp, http.StatusBadRequest)
	var body errorBody
	decodeBody(t, resp, &body)
	if string(body.Message) != `"User with that email already exists"` {
		t.Errorf("unexpected message %s", body.Message)
	}
}

func TestLogin_SameFailureForUnknownAndWrong(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "Alice", "alice@example.com")

	var bodies []string
	for _, creds := range []map[string]string{
		{"email": "nobody@example.com", "password": "pw123456"},
		{"email": "alice@example.com", "password": "wrong"},
	} {
		resp := do(t, srv, http.MethodPost, "/users/login", "", creds)
		expectStatus(t, resp, http.StatusUnauthorized)
		b, _ := io.ReadAll(resp.Body)
		bodies = append(bodies, string(b))
	}
	if bodies[0] != bodies[1] {
		t.Errorf("responses differ: %s vs %s", bodies[0], bodies[1])
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/users/profile"},
		{http.MethodPut, "/users/update"},
		{http.MethodDelete, "/users/delete"},
		{http.MethodPost, "/users/logout"},
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/anything"},
		{http.MethodDelete, "/posts/anything"},
	} {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp := do(t, srv, rt.method, rt.path, "", nil)
			expectStatus(t, resp, http.StatusUnauthorized)
			var body errorBody
			decodeBody(t, resp, &body)
			if body.StatusCode != http.StatusUnauthorized || string(body.Message) != `"Unauthorized"` {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestPostOwnership(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "Alice", "alice@example.com")
	bob := registerUser(t, srv, "Bob", "bob@example.com")

	alicePost := createPost(t, srv, alice, "alice's")
	bobPost := createPost(t, srv, bob, "bob's")

	resp := do(t, srv, http.MethodPut, "/posts/"+bobPost, alice, map[string]string{"title": "hijacked"})
	expectStatus(t, resp, http.StatusForbidden)
	var body errorBody
	decodeBody(t, resp, &body)
	if string(body.Message) != `"User not authorized to perform this action"` {
		t.Errorf("unexpected message %s", body.Message)
	}

	resp = do(t, srv, http.MethodDelete, "/posts/"+bobPost, alice, nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = do(t, srv, http.MethodPut, "/posts/"+alicePost, alice, map[string]string{"title": "edited"})
	expectStatus(t, resp, http.StatusOK)
	var updated models.PostView
	decodeBody(t, resp, &updated)
	if updated.Title != "edited" || updated.Content != "body" || updated.Author == nil || updated.Author.Name != "Alice" {
		t.Errorf("unexpected update result %+v", updated)
	}

	resp = do(t, srv, http.MethodPut, "/posts/does-not-exist", alice, map[string]string{"title": "x"})
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, srv, http.MethodDelete, "/posts/"+alicePost, alice, nil)
	expectStatus(t, resp, http.StatusOK)
	resp = do(t, srv, http.MethodGet, "/posts/"+alicePost, "", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = do(t, srv, http.MethodGet, "/posts/"+bobPost, "", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestLatestPosts(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "Alice", "alice@example.com")
	for _, title := range []string{"one", "two", "three"} {
		createPost(t, srv, alice, title)
	}

	resp := do(t, srv, http.MethodGet, "/posts/latest?page=1&pageSize=2", "", nil)
	expectStatus(t, resp, http.StatusOK)
	var latest models.LatestPosts
	decodeBody(t, resp, &latest)
	if len(latest.Posts) != 2 || !latest.HasMore || latest.Page != 1 {
		t.Fatalf("unexpected page %+v", latest)
	}
	if latest.Posts[0].Title != "three" || latest.Posts[1].Title != "two" {
		t.Errorf("expected newest first, got %q, %q", latest.Posts[0].Title, latest.Posts[1].Title)
	}

	resp = do(t, srv, http.MethodGet, "/posts/latest?page=abc&pageSize=", "", nil)
	expectStatus(t, resp, http.StatusOK)
	decodeBody(t, resp, &latest)
	if len(latest.Posts) != 3 || latest.HasMore || latest.Page != 1 {
		t.Errorf("expected defaults to apply, got %+v", latest)
	}
}

func TestCoverUpload(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "Alice", "alice@example.com")
	id := createPost(t, srv, alice, "with cover")

	upload := func(token, contentType, body string) *http.Response {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/posts/"+id+"/cover", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	expectStatus(t, upload(alice, "text/plain", "hello"), http.StatusBadRequest)

	bob := registerUser(t, srv, "Bob", "bob@example.com")
	expectStatus(t, upload(bob, "image/png", "PNG"), http.StatusForbidden)

	expectStatus(t, upload(alice, "image/png", "PNG"), http.StatusOK)

	resp := do(t, srv, http.MethodGet, "/posts/"+id+"/cover", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if b, _ := io.ReadAll(resp.Body); string(b) != "PNG" {
		t.Errorf("unexpected cover body %q", b)
	}
}

func TestUpdateAndDeleteProfile(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "Alice", "alice@example.com")

	resp := do(t, srv, http.MethodPut, "/users/update", token, map[string]string{"password": "new"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodPut, "/users/update", token, map[string]string{"name": "Alicia"})
	expectStatus(t, resp, http.StatusOK)
	var view models.UserView
	decodeBody(t, resp, &view)
	if view.Name != "Alicia" {
		t.Errorf("expected name Alicia, got %q", view.Name)
	}

	resp = do(t, srv, http.MethodDelete, "/users/delete", token, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/users/profile", token, nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/nope", "", nil)
	expectStatus(t, resp, http.StatusNotFound)
	var body errorBody
	decodeBody(t, resp, &body)
	if string(body.Message) != `"Cannot GET /nope"` {
		t.Errorf("unexpected message %s", body.Message)
	}
}

func TestBlankFieldsAreRejectedOnUpdate(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "Alice", "alice@example.com")
	id := createPost(t, srv, token, "title")

	resp := do(t, srv, http.MethodPut, "/users/update", token, map[string]string{"name": ""})
	expectStatus(t, resp, http.StatusBadRequest)
	var body errorBody
	decodeBody(t, resp, &body)
	if string(body.Message) != `["name should not be empty"]` {
		t.Errorf("unexpected message %s", body.Message)
	}

	resp = do(t, srv, http.MethodGet, "/users/profile", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var profile models.UserView
	decodeBody(t, resp, &profile)
	if profile.Name != "Alice" {
		t.Errorf("expected name Alice, got %q", profile.Name)
	}

	resp = do(t, srv, http.MethodPut, "/posts/"+id, token, map[string]string{"title": ""})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodGet, "/posts/"+id, "", nil)
	expectStatus(t, resp, http.StatusOK)
	var post models.PostView
	decodeBody(t, resp, &post)
	if post.Title != "title" || post.Author == nil || post.Author.Name != "Alice" {
		t.Errorf("post changed by rejected updates: %+v", post)
	}
}

func TestProfileAlwaysCarriesEveryField(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "Alice", "alice@example.com")

	resp := do(t, srv, http.MethodGet, "/users/profile", token, nil)
	expectStatus(t, resp, http.StatusOK)
	var profile map[string]any
	decodeBody(t, resp, &profile)
	for _, key := range []string{"userId", "name", "email", "phoneNumber", "address"} {
		if _, ok := profile[key]; !ok {
			t.Errorf("profile is missing %q: %v", key, profile)
		}
	}
	if len(profile) != 5 {
		t.Errorf("expected exactly 5 fields, got %v", profile)
	}
}

func TestPostAuthorCarriesOnlyName(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "Alice", "alice@example.com")
	id := createPost(t, srv, token, "title")

	resp := do(t, srv, http.MethodGet, "/posts/"+id, "", nil)
	expectStatus(t, resp, http.StatusOK)
	var post map[string]any
	decodeBody(t, resp, &post)
	author, _ := post["author"].(map[string]any)
	if len(author) != 1 || author["name"] != "Alice" {
		t.Errorf("unexpected author %v", post["author"])
	}
}
