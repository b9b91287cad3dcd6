package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/maheshrc27/xpilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var composeNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type postFixture struct {
	svc      PostService
	posts    *fakePostRepo
	quota    *fakeQuotaRepo
	x        *fakeXClient
	uploader *fakeUploader
	clock    *fixedClock
}

func newPostFixture() *postFixture {
	f := &postFixture{
		posts:    newFakePostRepo(),
		quota:    newFakeQuotaRepo(),
		x:        &fakeXClient{},
		uploader: &fakeUploader{},
		clock:    newClock(composeNow),
	}
	quota := NewQuotaService(f.quota, nil, discardLogger(), f.clock.Now)
	media := NewMediaService(f.uploader, "https://media.example.com/", discardLogger())
	f.svc = NewPostService(testConfig(), f.posts, quota, f.x, media, nil, discardLogger(), f.clock.Now)
	return f
}

func (f *postFixture) used(userID int64) int {
	n, _ := f.quota.used(userID, 10, 2026)
	return n
}

func TestComposeRejectsEmptyText(t *testing.T) {
	f := newPostFixture()
	user := sealedUser(t, 1, fullCreds)

	_, err := f.svc.Compose(context.Background(), user, &transfer.PostComposition{Text: "   \n\t"}, nil)
	assert.ErrorIs(t, err, ErrContentEmpty)
	assert.Equal(t, 0, f.posts.count())
	_, touched := f.quota.used(1, 10, 2026)
	assert.False(t, touched)
	assert.Empty(t, f.x.created)
}

func TestComposeLengthLimits(t *testing.T) {
	f := newPostFixture()
	text := strings.Repeat("a", 281)

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: text}, nil)
	require.ErrorIs(t, err, ErrExceedsLimit)
	assert.Contains(t, err.Error(), "280")
	assert.Equal(t, 0, f.posts.count())

	elevated := sealedUser(t, 2, fullCreds)
	elevated.VerifiedType = "blue"
	res, err := f.svc.Compose(context.Background(), elevated, &transfer.PostComposition{Text: text}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPosted, res.Post.Status)

	_, err = f.svc.Compose(context.Background(), elevated, &transfer.PostComposition{Text: strings.Repeat("b", 4001)}, nil)
	require.ErrorIs(t, err, ErrExceedsLimit)
	assert.Contains(t, err.Error(), "4000")
}

func TestLengthCountsCodePointsAfterTrim(t *testing.T) {
	in := &transfer.PostComposition{Text: "  " + strings.Repeat("é", 280) + "  "}
	text, at, err := ValidateComposition(in, composeNow)
	require.NoError(t, err)
	assert.Nil(t, at)
	assert.Equal(t, strings.Repeat("é", 280), text)

	in.Text = strings.Repeat("🙂", 281)
	_, _, err = ValidateComposition(in, composeNow)
	assert.ErrorIs(t, err, ErrExceedsLimit)
}

func TestValidationOrder(t *testing.T) {
	past := &transfer.PostComposition{Text: "", Schedule: true, ScheduleDate: "2020-01-01", ScheduleTime: "00:00"}
	_, _, err := ValidateComposition(past, composeNow)
	assert.ErrorIs(t, err, ErrContentEmpty)

	past.Text = strings.Repeat("x", 300)
	_, _, err = ValidateComposition(past, composeNow)
	assert.ErrorIs(t, err, ErrExceedsLimit)

	past.Text = "ok"
	_, _, err = ValidateComposition(past, composeNow)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestScheduleValidation(t *testing.T) {
	cases := []struct {
		name string
		in   transfer.PostComposition
		ok   bool
	}{
		{"one second ago", transfer.PostComposition{Schedule: true, ScheduleDate: "2026-10-17", ScheduleTime: "11:59:59"}, false},
		{"exactly now", transfer.PostComposition{Schedule: true, ScheduleDate: "2026-10-17", ScheduleTime: "12:00"}, false},
		{"one minute ahead", transfer.PostComposition{Schedule: true, ScheduleDate: "2026-10-17", ScheduleTime: "12:01"}, true},
		{"with seconds", transfer.PostComposition{Schedule: true, ScheduleDate: "2026-10-18", ScheduleTime: "08:30:15"}, true},
		{"missing time", transfer.PostComposition{Schedule: true, ScheduleDate: "2026-10-18"}, false},
		{"missing date", transfer.PostComposition{Schedule: true, ScheduleTime: "12:30"}, false},
		{"garbage", transfer.PostComposition{Schedule: true, ScheduleDate: "tomorrow", ScheduleTime: "noon"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.in
			in.Text = "hello"
			_, at, err := ValidateComposition(&in, composeNow)
			if tc.ok {
				require.NoError(t, err)
				require.NotNil(t, at)
				assert.True(t, at.After(composeNow))
				assert.Equal(t, time.UTC, at.Location())
			} else {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
			}
		})
	}
}

func TestScheduleFieldsIgnoredWithoutFlag(t *testing.T) {
	in := &transfer.PostComposition{Text: "now", ScheduleDate: "2026-10-18", ScheduleTime: "09:00"}
	text, at, err := ValidateComposition(in, composeNow)
	require.NoError(t, err)
	assert.Equal(t, "now", text)
	assert.Nil(t, at)

	in.ScheduleDate = "2020-01-01"
	_, at, err = ValidateComposition(in, composeNow)
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestComposePublishesWhenScheduleUnticked(t *testing.T) {
	f := newPostFixture()

	res, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{
		Text: "right away", ScheduleDate: "2026-10-18", ScheduleTime: "09:00",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPosted, res.Post.Status)
	assert.Nil(t, res.Post.ScheduledAt)
	assert.Equal(t, []string{"right away"}, f.x.created)
	assert.Equal(t, 1, f.used(1))
}

func TestComposeSchedulesWithoutRemoteCallOrQuota(t *testing.T) {
	f := newPostFixture()
	user := sealedUser(t, 1, models.Credentials{})

	res, err := f.svc.Compose(context.Background(), user, &transfer.PostComposition{
		Text: "later", Schedule: true, ScheduleDate: "2026-10-18", ScheduleTime: "09:00",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusScheduled, res.Post.Status)
	require.NotNil(t, res.Post.ScheduledAt)
	assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC), *res.Post.ScheduledAt)
	assert.Nil(t, res.Post.PostedAt)
	assert.Nil(t, res.Post.TwitterID)
	assert.Empty(t, f.x.created)
	assert.Equal(t, 0, f.used(1))
	assert.Equal(t, 1, f.posts.count())
}

func TestComposePublishes(t *testing.T) {
	f := newPostFixture()
	user := sealedUser(t, 1, fullCreds)

	res, err := f.svc.Compose(context.Background(), user, &transfer.PostComposition{Text: "  hello world  "}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello world"}, f.x.created)
	assert.Equal(t, fullCreds, f.x.lastCreds)
	assert.Equal(t, models.PostStatusPosted, res.Post.Status)
	require.NotNil(t, res.Post.TwitterID)
	assert.Equal(t, "remote-1", *res.Post.TwitterID)
	require.NotNil(t, res.Post.PostedAt)
	assert.Equal(t, composeNow, *res.Post.PostedAt)
	require.NotNil(t, res.Quota)
	assert.Equal(t, 1, res.Quota.PostsUsed)
	assert.Equal(t, 1, f.used(1))
}

func TestComposeRefusesWhenQuotaExhausted(t *testing.T) {
	f := newPostFixture()
	f.quota.set(1, 10, 2026, MonthlyLimit)

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: "one more"}, nil)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Empty(t, f.x.created)
	assert.Equal(t, 0, f.posts.count())
	assert.Equal(t, MonthlyLimit, f.used(1))
}

func TestComposeRequiresCredentials(t *testing.T) {
	f := newPostFixture()
	creds := fullCreds
	creds.AccessTokenSecret = ""

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, creds), &transfer.PostComposition{Text: "hi"}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Empty(t, f.x.created)
}

func TestComposeRemoteFailure(t *testing.T) {
	f := newPostFixture()
	f.x.createErr = errors.New("rate limited")

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: "hi"}, nil)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 0, f.posts.count())
	assert.Equal(t, 0, f.used(1))
}

func TestComposeWithMedia(t *testing.T) {
	f := newPostFixture()
	files := multipartFiles(t, map[string][]byte{"pic.png": pngBytes})

	res, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: "look"}, files)
	require.NoError(t, err)

	require.Len(t, f.uploader.keys, 1)
	assert.True(t, strings.HasPrefix(f.uploader.keys[0], "posts/1/"))
	assert.Equal(t, []string{"https://media.example.com/" + f.uploader.keys[0]}, res.Post.Media())
}

func TestComposeRemoteFailureDiscardsMedia(t *testing.T) {
	f := newPostFixture()
	f.x.createErr = errors.New("503 service unavailable")
	files := multipartFiles(t, map[string][]byte{"pic.png": pngBytes})

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: "look"}, files)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)

	require.Len(t, f.uploader.keys, 1)
	assert.Equal(t, f.uploader.keys, f.uploader.deleted)
	assert.Equal(t, 0, f.posts.count())
}

func TestComposeRejectsUnsupportedMediaBeforePublishing(t *testing.T) {
	f := newPostFixture()
	files := multipartFiles(t, map[string][]byte{"notes.txt": []byte("plain text")})

	_, err := f.svc.Compose(context.Background(), sealedUser(t, 1, fullCreds), &transfer.PostComposition{Text: "look"}, files)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	assert.Empty(t, f.x.created)
	assert.Empty(t, f.uploader.keys)
}

func seedPost(t *testing.T, f *postFixture, post *models.Post) int64 {
	t.Helper()
	id, err := f.posts.Create(context.Background(), post)
	require.NoError(t, err)
	return id
}

func TestDeleteWithFailingRemoteStillRemovesLocally(t *testing.T) {
	f := newPostFixture()
	f.x.deleteErr = errors.New("503 service unavailable")
	user := sealedUser(t, 1, fullCreds)
	id := seedPost(t, f, models.NewPublishedPost(1, "bye", "remote-9", composeNow.Add(-time.Hour)))

	res, err := f.svc.Delete(context.Background(), user, id)
	require.NoError(t, err)

	assert.Equal(t, id, res.PostID)
	assert.Contains(t, res.Warning, "503")
	assert.Equal(t, []string{"remote-9"}, f.x.deleted)
	assert.Equal(t, 0, f.posts.count())
	assert.Equal(t, 1, f.used(1))
}

func TestDeletePublishedTracksPost(t *testing.T) {
	f := newPostFixture()
	id := seedPost(t, f, models.NewPublishedPost(1, "bye", "remote-3", composeNow))

	res, err := f.svc.Delete(context.Background(), sealedUser(t, 1, fullCreds), id)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, 1, f.used(1))
}

func TestDeleteScheduledSkipsRemote(t *testing.T) {
	f := newPostFixture()
	id := seedPost(t, f, models.NewScheduledPost(1, "later", composeNow.Add(time.Hour)))

	_, err := f.svc.Delete(context.Background(), sealedUser(t, 1, fullCreds), id)
	require.NoError(t, err)
	assert.Empty(t, f.x.deleted)
	assert.Equal(t, 0, f.used(1))
	assert.Equal(t, 0, f.posts.count())
}

func TestDeleteOwnership(t *testing.T) {
	f := newPostFixture()
	id := seedPost(t, f, models.NewPublishedPost(1, "mine", "remote-1", composeNow))

	_, err := f.svc.Delete(context.Background(), sealedUser(t, 2, fullCreds), id)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 1, f.posts.count())
	assert.Empty(t, f.x.deleted)

	_, err = f.svc.Delete(context.Background(), sealedUser(t, 1, fullCreds), 404)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestComposeInfo(t *testing.T) {
	f := newPostFixture()
	user := sealedUser(t, 1, fullCreds)

	info, err := f.svc.ComposeInfo(context.Background(), user)
	require.NoError(t, err)
	assert.False(t, info.Premium)
	assert.Equal(t, StandardCharLimit, info.CharLimit)

	user.IsVerified = true
	info, err = f.svc.ComposeInfo(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, info.Premium)
	assert.Equal(t, ElevatedCharLimit, info.CharLimit)
}

func TestListingAndCounts(t *testing.T) {
	f := newPostFixture()
	seedPost(t, f, models.NewScheduledPost(1, "a", composeNow.Add(time.Hour)))
	seedPost(t, f, models.NewPublishedPost(1, "b", "r1", composeNow))
	seedPost(t, f, models.NewPublishedPost(2, "c", "r2", composeNow))

	all, err := f.svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scheduled, err := f.svc.Scheduled(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "a", scheduled[0].Text)

	counts, err := f.svc.CountByStatus(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"draft": 0, "scheduled": 1, "posted": 1, "failed": 0}, counts)
}
