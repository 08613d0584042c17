package tools

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/auditlog"
	"github.com/anatolykoptev/go-xtools/costs"
	"github.com/anatolykoptev/go-xtools/media"
)

var errNotStubbed = errors.New("not stubbed")

// fakeAPI records calls and answers through optional per-method funcs.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	createPost   func(twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error)
	deletePost   func(string) (*twitter.Response[twitter.DeleteResult], error)
	searchRecent func(string, int) (*twitter.Response[[]*twitter.Post], error)
	getPost      func(string) (*twitter.Response[*twitter.Post], error)
	getUser      func(string) (*twitter.Response[*twitter.User], error)
	getMe        func() (*twitter.Response[*twitter.User], error)
	getMentions  func(string, int) (*twitter.Response[[]*twitter.Post], error)
	like         func(string, string) (*twitter.Response[twitter.LikeResult], error)
	unlike       func(string, string) (*twitter.Response[twitter.LikeResult], error)
	follow       func(string, string) (*twitter.Response[twitter.FollowResult], error)
	sendDM       func(string, string) (*twitter.Response[twitter.DMResult], error)
	listDMs      func(string, int) (*twitter.Response[[]*twitter.DMEvent], error)
	uploadMedia  func([]byte, string) (*twitter.Response[twitter.Media], error)
}

var _ twitter.API = (*fakeAPI)(nil)

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) CreatePost(_ context.Context, req twitter.CreatePostRequest) (*twitter.Response[*twitter.Post], error) {
	f.record("CreatePost")
	if f.createPost == nil {
		return nil, errNotStubbed
	}
	return f.createPost(req)
}

func (f *fakeAPI) DeletePost(_ context.Context, id string) (*twitter.Response[twitter.DeleteResult], error) {
	f.record("DeletePost")
	if f.deletePost == nil {
		return nil, errNotStubbed
	}
	return f.deletePost(id)
}

func (f *fakeAPI) SearchRecent(_ context.Context, q string, n int) (*twitter.Response[[]*twitter.Post], error) {
	f.record("SearchRecent")
	if f.searchRecent == nil {
		return nil, errNotStubbed
	}
	return f.searchRecent(q, n)
}

func (f *fakeAPI) GetPost(_ context.Context, id string) (*twitter.Response[*twitter.Post], error) {
	f.record("GetPost")
	if f.getPost == nil {
		return nil, errNotStubbed
	}
	return f.getPost(id)
}

func (f *fakeAPI) GetUserByUsername(_ context.Context, u string) (*twitter.Response[*twitter.User], error) {
	f.record("GetUserByUsername")
	if f.getUser == nil {
		return nil, errNotStubbed
	}
	return f.getUser(u)
}

func (f *fakeAPI) GetMe(context.Context) (*twitter.Response[*twitter.User], error) {
	f.record("GetMe")
	if f.getMe == nil {
		return nil, errNotStubbed
	}
	return f.getMe()
}

func (f *fakeAPI) GetMentions(_ context.Context, uid string, n int) (*twitter.Response[[]*twitter.Post], error) {
	f.record("GetMentions")
	if f.getMentions == nil {
		return nil, errNotStubbed
	}
	return f.getMentions(uid, n)
}

func (f *fakeAPI) Like(_ context.Context, uid, tid string) (*twitter.Response[twitter.LikeResult], error) {
	f.record("Like")
	if f.like == nil {
		return nil, errNotStubbed
	}
	return f.like(uid, tid)
}

func (f *fakeAPI) Unlike(_ context.Context, uid, tid string) (*twitter.Response[twitter.LikeResult], error) {
	f.record("Unlike")
	if f.unlike == nil {
		return nil, errNotStubbed
	}
	return f.unlike(uid, tid)
}

func (f *fakeAPI) Follow(_ context.Context, src, dst string) (*twitter.Response[twitter.FollowResult], error) {
	f.record("Follow")
	if f.follow == nil {
		return nil, errNotStubbed
	}
	return f.follow(src, dst)
}

func (f *fakeAPI) SendDM(_ context.Context, pid, text string) (*twitter.Response[twitter.DMResult], error) {
	f.record("SendDM")
	if f.sendDM == nil {
		return nil, errNotStubbed
	}
	return f.sendDM(pid, text)
}

func (f *fakeAPI) ListDMEvents(_ context.Context, pid string, n int) (*twitter.Response[[]*twitter.DMEvent], error) {
	f.record("ListDMEvents")
	if f.listDMs == nil {
		return nil, errNotStubbed
	}
	return f.listDMs(pid, n)
}

func (f *fakeAPI) UploadMedia(_ context.Context, data []byte, mime string) (*twitter.Response[twitter.Media], error) {
	f.record("UploadMedia")
	if f.uploadMedia == nil {
		return nil, errNotStubbed
	}
	return f.uploadMedia(data, mime)
}

// fakeClients serves one fakeAPI as both clients.
type fakeClients struct {
	api    *fakeAPI
	userID string
	idErr  error
}

func (c *fakeClients) WriteClient() (twitter.API, error) { return c.api, nil }
func (c *fakeClients) ReadClient() (twitter.API, error)  { return c.api, nil }

func (c *fakeClients) UserID(context.Context) (string, error) {
	c.api.record("UserID")
	if c.idErr != nil {
		return "", c.idErr
	}
	return c.userID, nil
}

type fakeImages struct {
	img *media.Image
	err error
}

func (f fakeImages) Load(context.Context, string) (*media.Image, error) {
	return f.img, f.err
}

type harness struct {
	reg    *Registry
	api    *fakeAPI
	ledger *costs.Ledger
	audit  *auditlog.Logger
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	h := &harness{
		reg:    NewRegistry(),
		api:    api,
		ledger: costs.NewLedger(),
		audit:  auditlog.New(filepath.Join(t.TempDir(), "audit.jsonl")),
	}
	require.NoError(t, RegisterAll(h.reg, Deps{
		Clients: &fakeClients{api: api, userID: "42"},
		Costs:   h.ledger,
		Audit:   h.audit,
		Images:  fakeImages{img: &media.Image{Data: []byte("img"), MimeType: "image/png"}},
	}))
	return h
}

func (h *harness) call(t *testing.T, name string, params any) (Result, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	res := h.reg.Execute(context.Background(), name, "session-1", raw)
	return res, decode(t, res)
}

func decode(t *testing.T, res Result) map[string]any {
	t.Helper()
	require.Len(t, res.Content, 1)
	require.Equal(t, "text", res.Content[0].Type)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Text()), &out))
	return out
}

func postOK(id, text string) (*twitter.Response[*twitter.Post], error) {
	return &twitter.Response[*twitter.Post]{Data: &twitter.Post{ID: id, Text: text}}, nil
}
