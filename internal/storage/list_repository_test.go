package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"smswall/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	return db
}

func TestListRepository_CreateGrantsInitialOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)

	list := &models.MailingList{Shortcode: "1500", OwnerOnly: false, IsPublic: true}
	require.NoError(t, repo.Create(list, "12345"))

	got, err := repo.Get("1500")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.OwnerOnly)
	assert.True(t, got.IsPublic)

	members, err := repo.Members("1500")
	require.NoError(t, err)
	assert.Equal(t, []string{"12345"}, members)

	isOwner, err := repo.IsOwner("1500", "12345")
	require.NoError(t, err)
	assert.True(t, isOwner)
}

func TestListRepository_AddMemberIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)

	require.NoError(t, repo.Create(&models.MailingList{Shortcode: "1500", IsPublic: true}, "12345"))

	added, err := repo.AddMember("1500", "43210")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMember("1500", "43210")
	require.NoError(t, err)
	assert.False(t, added, "second insert of the same member must change nothing")

	var count int64
	require.NoError(t, db.Model(&models.ListMember{}).
		Where("list = ? AND member = ?", "1500", "43210").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListRepository_RemoveMemberCascadesOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)

	require.NoError(t, repo.Create(&models.MailingList{Shortcode: "1500", IsPublic: true}, "12345"))
	_, err := repo.AddMember("1500", "43210")
	require.NoError(t, err)
	require.NoError(t, repo.AddOwner("1500", "43210"))

	require.NoError(t, repo.RemoveMember("1500", "43210"))

	members, err := repo.Members("1500")
	require.NoError(t, err)
	assert.NotContains(t, members, "43210")

	isOwner, err := repo.IsOwner("1500", "43210")
	require.NoError(t, err)
	assert.False(t, isOwner, "ownership must not outlive membership")
}

func TestListRepository_DeleteRemovesAllRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)

	require.NoError(t, repo.Create(&models.MailingList{Shortcode: "1500", IsPublic: true}, "12345"))
	_, err := repo.AddMember("1500", "43210")
	require.NoError(t, err)
	_, err = repo.AddMember("1500", "55555")
	require.NoError(t, err)

	members, err := repo.Delete("1500")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"12345", "43210", "55555"}, members)

	for _, model := range []interface{}{&models.MailingList{}, &models.ListMember{}, &models.ListOwner{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
}

func TestListRepository_DeleteRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)

	require.NoError(t, repo.Create(&models.MailingList{Shortcode: "1500", IsPublic: true}, "12345"))
	_, err := repo.AddMember("1500", "43210")
	require.NoError(t, err)

	// Dropping the ownership table makes the last statement of the delete
	// transaction fail after the list and membership rows are already gone
	// inside the transaction. The rollback must restore all of them.
	require.NoError(t, db.Migrator().DropTable(&models.ListOwner{}))

	_, err = repo.Delete("1500")
	require.Error(t, err)

	got, err := repo.Get("1500")
	require.NoError(t, err)
	assert.NotNil(t, got, "list row must survive an aborted delete")

	members, err := repo.Members("1500")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"12345", "43210"}, members, "membership rows must survive an aborted delete")
}

func TestConfirmRepository_PutRejectsSecondPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfirmRepository(db)

	first := &models.PendingConfirmation{Sender: "12345", Recipient: "1000", Command: "delete 1500", CreatedAt: time.Now()}
	require.NoError(t, repo.Put(first))

	second := &models.PendingConfirmation{Sender: "12345", Recipient: "1000", Command: "delete 1501", CreatedAt: time.Now()}
	err := repo.Put(second)
	assert.ErrorIs(t, err, ErrConfirmationPending)

	got, err := repo.Get("12345")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "delete 1500", got.Command, "original pending action must survive")
}

func TestConfirmRepository_Purge(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfirmRepository(db)

	old := &models.PendingConfirmation{Sender: "11111", Recipient: "1000", Command: "delete 1500", CreatedAt: time.Now().Add(-2 * time.Hour)}
	fresh := &models.PendingConfirmation{Sender: "22222", Recipient: "1000", Command: "delete 1501", CreatedAt: time.Now()}
	require.NoError(t, repo.Put(old))
	require.NoError(t, repo.Put(fresh))

	n, err := repo.Purge(30 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Get("11111")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Get("22222")
	require.NoError(t, err)
	assert.NotNil(t, got)

	// Zero age purges everything regardless of timestamps.
	n, err = repo.Purge(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNameRepository_SetNameUpserts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNameRepository(db)

	require.NoError(t, repo.SetName("12345", "Alice"))
	require.NoError(t, repo.SetName("12345", "Alicia"))

	name, err := repo.GetName("12345")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", name)

	name, err = repo.GetName("99999")
	require.NoError(t, err)
	assert.Equal(t, "", name)
}
