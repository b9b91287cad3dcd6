package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	config "github.com/maheshrc27/xpilot/configs"
	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/transfer"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var fullCreds = models.Credentials{
	ConsumerKey:       "consumer-key",
	ConsumerSecret:    "consumer-secret",
	AccessToken:       "access-token",
	AccessTokenSecret: "access-secret",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{SecretKey: testSecret, SiteURL: "http://localhost:3000"}
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func sealedUser(t *testing.T, id int64, creds models.Credentials) *models.User {
	t.Helper()
	u := &models.User{ID: id, TwitterID: "tw-" + string(rune('0'+id)), Username: "alice", Name: "Alice"}
	require.NoError(t, newCredentialCipher(testSecret).seal(u, creds))
	return u
}

// quota

type quotaKey struct {
	userID      int64
	month, year int
}

type fakeQuotaRepo struct {
	mu     sync.Mutex
	rows   map[quotaKey]*models.QuotaUsage
	nextID int64
	err    error
}

func newFakeQuotaRepo() *fakeQuotaRepo {
	return &fakeQuotaRepo{rows: map[quotaKey]*models.QuotaUsage{}}
}

func (r *fakeQuotaRepo) GetOrCreate(ctx context.Context, userID int64, month, year int, resetDate string) (*models.QuotaUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	k := quotaKey{userID, month, year}
	row, ok := r.rows[k]
	if !ok {
		r.nextID++
		row = &models.QuotaUsage{ID: r.nextID, UserID: userID, Month: month, Year: year, ResetDate: resetDate}
		r.rows[k] = row
	}
	cp := *row
	return &cp, nil
}

func (r *fakeQuotaRepo) Increment(ctx context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.ID == id {
			row.PostsUsed++
			return row.PostsUsed, nil
		}
	}
	return 0, sql.ErrNoRows
}

func (r *fakeQuotaRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.QuotaUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.QuotaUsage{}
	for _, row := range r.rows {
		if row.UserID == userID {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (r *fakeQuotaRepo) set(userID int64, month, year, used int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := quotaKey{userID, month, year}
	if row, ok := r.rows[k]; ok {
		row.PostsUsed = used
		return
	}
	r.nextID++
	r.rows[k] = &models.QuotaUsage{ID: r.nextID, UserID: userID, Month: month, Year: year, PostsUsed: used,
		ResetDate: ResetDate(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))}
}

func (r *fakeQuotaRepo) used(userID int64, month, year int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[quotaKey{userID, month, year}]
	if !ok {
		return 0, false
	}
	return row.PostsUsed, true
}

// posts

type fakePostRepo struct {
	mu     sync.Mutex
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*models.Post{}}
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	post.CreatedAt = time.Now().UTC()
	cp := *post
	r.posts[post.ID] = &cp
	return post.ID, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.filter(userID, ""), nil
}

func (r *fakePostRepo) GetScheduled(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.filter(userID, models.PostStatusScheduled), nil
}

func (r *fakePostRepo) filter(userID int64, status string) []*models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Post{}
	for _, p := range r.posts {
		if p.UserID == userID && (status == "" || p.Status == status) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *fakePostRepo) CountByStatus(ctx context.Context, userID int64) (map[string]int, error) {
	counts := map[string]int{
		models.PostStatusDraft:     0,
		models.PostStatusScheduled: 0,
		models.PostStatusPosted:    0,
		models.PostStatusFailed:    0,
	}
	for _, p := range r.filter(userID, "") {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

// users

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*models.User{}}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (r *fakeUserRepo) GetByTwitterID(ctx context.Context, twitterID string) (*models.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TwitterID == twitterID {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TwitterID == user.TwitterID {
			u.Username = user.Username
			u.Name = user.Name
			u.ProfileImageURL = user.ProfileImageURL
			u.AccessToken = user.AccessToken
			u.AccessTokenSecret = user.AccessTokenSecret
			u.IsVerified = user.IsVerified
			u.VerifiedType = user.VerifiedType
			u.LastLogin = user.LastLogin
			return u.ID, nil
		}
	}
	r.nextID++
	cp := *user
	cp.ID = r.nextID
	r.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	u.Username = user.Username
	u.Name = user.Name
	u.ProfileImageURL = user.ProfileImageURL
	u.IsVerified = user.IsVerified
	u.VerifiedType = user.VerifiedType
	return nil
}

func (r *fakeUserRepo) SetAccessToken(ctx context.Context, id int64, accessToken, accessTokenSecret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("no rows affected; user_id may not exist")
	}
	u.AccessToken = accessToken
	u.AccessTokenSecret = accessTokenSecret
	return nil
}

func (r *fakeUserRepo) add(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
	cp := *u
	r.users[u.ID] = &cp
}

// streams

type fakeStreamRepo struct {
	mu      sync.Mutex
	streams map[int64]*models.Stream
	results map[int64][]*models.StreamResult
	nextID  int64
}

func newFakeStreamRepo() *fakeStreamRepo {
	return &fakeStreamRepo{streams: map[int64]*models.Stream{}, results: map[int64][]*models.StreamResult{}}
}

func (r *fakeStreamRepo) Create(ctx context.Context, s *models.Stream) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	s.CreatedAt = time.Now().UTC()
	cp := *s
	r.streams[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeStreamRepo) GetByID(ctx context.Context, id int64) (*models.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStreamRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Stream{}
	for _, s := range r.streams {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStreamRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.streams[id]; ok {
		s.Active = active
	}
	return nil
}

func (r *fakeStreamRepo) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, id)
	delete(r.results, id)
	return nil
}

func (r *fakeStreamRepo) AddResult(ctx context.Context, res *models.StreamResult) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	res.ID = r.nextID
	res.CreatedAt = time.Now().UTC()
	cp := *res
	r.results[res.StreamID] = append(r.results[res.StreamID], &cp)
	now := time.Now().UTC()
	if s, ok := r.streams[res.StreamID]; ok {
		s.LastRun = &now
	}
	return res.ID, nil
}

func (r *fakeStreamRepo) ListResults(ctx context.Context, streamID int64) ([]*models.StreamResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.StreamResult{}
	for _, res := range r.results[streamID] {
		cp := *res
		out = append(out, &cp)
	}
	return out, nil
}

// remote

type fakeXClient struct {
	mu          sync.Mutex
	createErr   error
	deleteErr   error
	verifyErr   error
	identity    *transfer.XIdentity
	created     []string
	deleted     []string
	invalidated int
	followed    []string
	unfollowed  []string
	lastCreds   models.Credentials
}

func (c *fakeXClient) CreatePost(ctx context.Context, creds models.Credentials, text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCreds = creds
	if c.createErr != nil {
		return "", c.createErr
	}
	c.created = append(c.created, text)
	return "remote-" + string(rune('0'+len(c.created))), nil
}

func (c *fakeXClient) DeletePost(ctx context.Context, creds models.Credentials, remoteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, remoteID)
	return c.deleteErr
}

func (c *fakeXClient) GetProfile(ctx context.Context, creds models.Credentials) (*transfer.XProfile, error) {
	return &transfer.XProfile{ID: "tw-1", Username: "alice", Name: "Alice"}, nil
}

func (c *fakeXClient) VerifyCredentials(ctx context.Context, creds models.Credentials) (*transfer.XIdentity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCreds = creds
	if c.verifyErr != nil {
		return nil, c.verifyErr
	}
	if c.identity != nil {
		id := *c.identity
		return &id, nil
	}
	return &transfer.XIdentity{TwitterID: "777", Username: "alice", Name: "Alice"}, nil
}

func (c *fakeXClient) InvalidateToken(ctx context.Context, creds models.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *fakeXClient) LookupUser(ctx context.Context, handle string) (*transfer.XUser, error) {
	return &transfer.XUser{ID: "id-" + handle, Username: handle, Name: handle}, nil
}

func (c *fakeXClient) LookupUsers(ctx context.Context, handles []string) ([]*transfer.XUser, error) {
	out := []*transfer.XUser{}
	for _, h := range handles {
		u, _ := c.LookupUser(ctx, h)
		out = append(out, u)
	}
	return out, nil
}

func (c *fakeXClient) Follow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followed = append(c.followed, targetID)
	return nil
}

func (c *fakeXClient) Unfollow(ctx context.Context, creds models.Credentials, sourceID, targetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unfollowed = append(c.unfollowed, targetID)
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	err     error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.keys = append(u.keys, key)
	return nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deleted = append(u.deleted, key)
	return nil
}

// multipartFiles builds file headers the way fiber hands them to handlers.
func multipartFiles(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["files"]
}

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
