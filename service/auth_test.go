package service

import (
	"testing"
	"time"

	"expensebook/models"
	"expensebook/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

// memStore 测试用的内存会话存储
type memStore struct {
	sessions map[string]*models.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*models.Session{}}
}

func (m *memStore) Get(id string) (*models.Session, error) {
	sess, ok := m.sessions[id]
	if !ok || sess.IsExpired() {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (m *memStore) Save(sess *models.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) Destroy(id string) error {
	delete(m.sessions, id)
	return nil
}

func TestAuthService_Register_UsernameTooShort(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	_, err := svc.Register("abc", "password1")
	require.Error(t, err)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "username", ve.Field)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow(1, "taken_user", "hash")
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("taken_user").
		WillReturnRows(rows)

	_, err := svc.Register("taken_user", "password1")
	require.Error(t, err)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "username", ve.Field)
	assert.Contains(t, ve.Message, "已被占用")
}

func TestAuthService_Register_PasswordPolicy(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	cases := []struct {
		password string
	}{
		{"short1"},     // 不足 8 位
		{"longenough"}, // 没有数字
	}
	for _, c := range cases {
		mock.ExpectQuery("SELECT .* FROM `users`").
			WithArgs("newuser").
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := svc.Register("newuser", c.password)
		require.Error(t, err, "password=%q", c.password)
		ve, ok := AsValidation(err)
		require.True(t, ok, "password=%q", c.password)
		assert.Equal(t, "password", ve.Field)
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("newuser").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user, err := svc.Register("newuser", "longenough1")
	require.NoError(t, err)
	assert.Equal(t, "newuser", user.Username)
	// 密码以 bcrypt 散列存储
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("longenough1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Attempt_UnknownUser(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("ghost").
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.Attempt("ghost", "whatever1", "")
	require.Error(t, err)
	ae, ok := AsAuth(err)
	require.True(t, ok)
	assert.Equal(t, "username", ae.Field)
	assert.Equal(t, "用户名不存在", ae.Message)
}

func TestAuthService_Attempt_WrongPassword(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	svc := NewAuthService(db, newMemStore(), time.Hour)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct1pass"), bcrypt.MinCost)
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow(1, "alice123", string(hash))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("alice123").
		WillReturnRows(rows)

	_, err = svc.Attempt("alice123", "wrong1pass", "")
	require.Error(t, err)
	ae, ok := AsAuth(err)
	require.True(t, ok)
	assert.Equal(t, "password", ae.Field)
	assert.Equal(t, "密码错误", ae.Message)
}

func TestAuthService_Attempt_RotatesSession(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	store := newMemStore()
	svc := NewAuthService(db, store, time.Hour)

	// 旧会话应在新登录时被销毁
	old := &models.Session{ID: "old-session-id", UserID: 1, Username: "alice123", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(old))

	hash, err := bcrypt.GenerateFromPassword([]byte("correct1pass"), bcrypt.MinCost)
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "username", "password"}).
		AddRow(1, "alice123", string(hash))
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("alice123").
		WillReturnRows(rows)

	sess, err := svc.Attempt("alice123", "correct1pass", "old-session-id")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEqual(t, "old-session-id", sess.ID)
	assert.Equal(t, uint(1), sess.UserID)

	_, err = store.Get("old-session-id")
	assert.ErrorIs(t, err, session.ErrNotFound)
	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice123", got.Username)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()
	store := newMemStore()
	svc := NewAuthService(db, store, time.Hour)

	sess := &models.Session{ID: "sid", UserID: 1, Username: "alice123", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(sess))

	require.NoError(t, svc.Logout("sid"))
	require.NoError(t, svc.Logout("sid"))
	require.NoError(t, svc.Logout(""))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("short1"))
	assert.Error(t, ValidatePassword("longenough"))
	assert.NoError(t, ValidatePassword("longenough1"))
}
