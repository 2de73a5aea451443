package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/bearer-auth/internal/models"
	"github.com/pribylovaa/bearer-auth/internal/storage"
	"github.com/pribylovaa/bearer-auth/mocks"
)

func newUsers(t *testing.T) (*Users, *mocks.MockUserStorage, *mocks.MockUserCache) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockUserStorage(ctrl)
	c := mocks.NewMockUserCache(ctrl)

	return NewUsers(st, c, time.Minute), st, c
}

func TestUsers_UserByID_CacheHit_SkipsStorage(t *testing.T) {
	t.Parallel()

	u, _, c := newUsers(t)
	want := &models.User{ID: 7, Email: "a@x.com", IsActive: true}

	c.EXPECT().Get(gomock.Any(), int64(7)).Return(want, true, nil)

	got, err := u.UserByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUsers_UserByID_Miss_ReadsStorage_AndFillsCache(t *testing.T) {
	t.Parallel()

	u, st, c := newUsers(t)
	want := &models.User{ID: 7, Email: "a@x.com"}

	gomock.InOrder(
		c.EXPECT().Get(gomock.Any(), int64(7)).Return(nil, false, nil),
		st.EXPECT().UserByID(gomock.Any(), int64(7)).Return(want, nil),
		c.EXPECT().Set(gomock.Any(), want, time.Minute).Return(nil),
	)

	got, err := u.UserByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestUsers_UserByID_CacheErrors_AreNotFatal — сбой Redis не ломает чтение.
func TestUsers_UserByID_CacheErrors_AreNotFatal(t *testing.T) {
	t.Parallel()

	u, st, c := newUsers(t)
	want := &models.User{ID: 3}

	c.EXPECT().Get(gomock.Any(), int64(3)).Return(nil, false, errors.New("redis down"))
	st.EXPECT().UserByID(gomock.Any(), int64(3)).Return(want, nil)
	c.EXPECT().Set(gomock.Any(), want, time.Minute).Return(errors.New("redis down"))

	got, err := u.UserByID(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestUsers_UserByID_NotFound_IsNotCached(t *testing.T) {
	t.Parallel()

	u, st, c := newUsers(t)

	c.EXPECT().Get(gomock.Any(), int64(9)).Return(nil, false, nil)
	st.EXPECT().UserByID(gomock.Any(), int64(9)).Return(nil, storage.ErrNotFound)

	_, err := u.UserByID(context.Background(), 9)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUsers_UpdateProfile_InvalidatesCache(t *testing.T) {
	t.Parallel()

	u, st, c := newUsers(t)
	name := "B"
	upd := models.ProfileUpdate{FullName: &name}
	saved := &models.User{ID: 5, Email: "b@x.com", FullName: name}

	gomock.InOrder(
		st.EXPECT().UpdateProfile(gomock.Any(), int64(5), upd).Return(saved, nil),
		c.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil),
	)

	got, err := u.UpdateProfile(context.Background(), 5, upd)
	require.NoError(t, err)
	require.Equal(t, saved, got)
}

func TestUsers_UpdateProfile_StorageError_KeepsCache(t *testing.T) {
	t.Parallel()

	u, st, _ := newUsers(t)

	st.EXPECT().UpdateProfile(gomock.Any(), int64(5), gomock.Any()).Return(nil, storage.ErrAlreadyExists)

	_, err := u.UpdateProfile(context.Background(), 5, models.ProfileUpdate{})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUsers_EmailLookupAndSave_PassThrough(t *testing.T) {
	t.Parallel()

	u, st, _ := newUsers(t)
	user := &models.User{Email: "c@x.com"}

	st.EXPECT().UserByEmail(gomock.Any(), "c@x.com").Return(user, nil)
	st.EXPECT().SaveUser(gomock.Any(), user).Return(nil)

	got, err := u.UserByEmail(context.Background(), "c@x.com")
	require.NoError(t, err)
	require.Equal(t, user, got)
	require.NoError(t, u.SaveUser(context.Background(), user))
}
