package service

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// roomRecorder 捕获 RoomNotifier 的调用，替代真实 WS 层。
type roomRecorder struct {
	rooms    []string
	payloads []string
}

func (r *roomRecorder) notify(roomKey string, msg []byte) {
	r.rooms = append(r.rooms, roomKey)
	r.payloads = append(r.payloads, string(msg))
}

func expectRecipeLookup(mock sqlmock.Sqlmock, recipeID, authorID uint64, title string) {
	mock.ExpectQuery("SELECT .* FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "author_id", "title"}).
			AddRow(recipeID, "recipe-uid", authorID, title))
}

func expectSenderLookup(mock sqlmock.Sqlmock, senderID uint64, nickname string) {
	mock.ExpectQuery("SELECT .* FROM `sv_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uid", "username", "nickname", "avatar"}).
			AddRow(senderID, "user-uid", nickname, nickname, "http://avatar"))
}

func TestNotificationService_LikeApplied_CreatesAndPushes(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	// 场景：用户 1 点赞了用户 2 的菜谱 42
	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	mock.ExpectExec("INSERT INTO `sv_notification`").
		WillReturnResult(sqlmock.NewResult(7, 1))

	if err := ns.LikeApplied(42, 1); err != nil {
		t.Fatalf("LikeApplied: %v", err)
	}

	if len(rec.rooms) != 1 || rec.rooms[0] != "user:2" {
		t.Fatalf("expected push to user:2, got %v", rec.rooms)
	}
	if !strings.Contains(rec.payloads[0], `"type":"new-notification"`) {
		t.Fatalf("expected new-notification event, got %s", rec.payloads[0])
	}
	if !strings.Contains(rec.payloads[0], `"recipient_id":2`) {
		t.Fatalf("expected recipient_id 2, got %s", rec.payloads[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LikeApplied_DuplicateIsNoop(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	// DedupKey 唯一索引冲突被 OnConflict DoNothing 吃掉：0 行受影响
	mock.ExpectExec("INSERT INTO `sv_notification`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ns.LikeApplied(42, 1); err != nil {
		t.Fatalf("LikeApplied duplicate: %v", err)
	}

	// 幂等路径：不落新行也不重复推送
	if len(rec.rooms) != 0 {
		t.Fatalf("expected no push on duplicate, got %v", rec.rooms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LikeApplied_SelfSuppressed(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	// 自己赞自己的菜谱：lookup 之后直接返回，不 INSERT 不推送
	expectRecipeLookup(mock, 42, 1, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")

	if err := ns.LikeApplied(42, 1); err != nil {
		t.Fatalf("LikeApplied self: %v", err)
	}
	if len(rec.rooms) != 0 {
		t.Fatalf("expected no push for self-like, got %v", rec.rooms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LikeRemoved_DeletesAndPushes(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	// 必须是物理 DELETE：软删会把 DedupKey 永久占住，之后再点赞就插不进去了
	mock.ExpectExec("DELETE FROM `sv_notification`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ns.LikeRemoved(42, 1); err != nil {
		t.Fatalf("LikeRemoved: %v", err)
	}

	if len(rec.rooms) != 1 || rec.rooms[0] != "user:2" {
		t.Fatalf("expected push to user:2, got %v", rec.rooms)
	}
	p := rec.payloads[0]
	if !strings.Contains(p, `"type":"notification-removed"`) ||
		!strings.Contains(p, `"recipe_id":42`) ||
		!strings.Contains(p, `"sender_id":1`) {
		t.Fatalf("unexpected removed event: %s", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LikeRemoved_NothingToRemove(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	mock.ExpectExec("DELETE FROM `sv_notification`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ns.LikeRemoved(42, 1); err != nil {
		t.Fatalf("LikeRemoved: %v", err)
	}
	// 本来就没有通知：不推撤销
	if len(rec.rooms) != 0 {
		t.Fatalf("expected no push, got %v", rec.rooms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LikeReapplyAfterRemove(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	// 点赞 -> 取消 -> 再点赞：再点赞必须产生一条全新通知并再次推送。
	// 前提是取消时物理删行释放了 DedupKey；软删会让第三步被唯一索引吃掉。
	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	mock.ExpectExec("INSERT INTO `sv_notification`").
		WillReturnResult(sqlmock.NewResult(7, 1))

	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	mock.ExpectExec("DELETE FROM `sv_notification`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectRecipeLookup(mock, 42, 2, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")
	mock.ExpectExec("INSERT INTO `sv_notification`").
		WillReturnResult(sqlmock.NewResult(8, 1))

	if err := ns.LikeApplied(42, 1); err != nil {
		t.Fatalf("first LikeApplied: %v", err)
	}
	if err := ns.LikeRemoved(42, 1); err != nil {
		t.Fatalf("LikeRemoved: %v", err)
	}
	if err := ns.LikeApplied(42, 1); err != nil {
		t.Fatalf("second LikeApplied: %v", err)
	}

	if len(rec.rooms) != 3 {
		t.Fatalf("expected 3 pushes (new/removed/new), got %v", rec.rooms)
	}
	if !strings.Contains(rec.payloads[0], `"type":"new-notification"`) ||
		!strings.Contains(rec.payloads[1], `"type":"notification-removed"`) ||
		!strings.Contains(rec.payloads[2], `"type":"new-notification"`) {
		t.Fatalf("unexpected push sequence: %v", rec.payloads)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_CommentAdded_SelfSuppressed(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	// 作者评论自己的菜谱：不通知（comment-added 的房间广播在 CommentService 里，与这里无关）
	expectRecipeLookup(mock, 42, 1, "红烧肉")
	expectSenderLookup(mock, 1, "阿明")

	if err := ns.CommentAdded(42, 1, "自顶一下"); err != nil {
		t.Fatalf("CommentAdded self: %v", err)
	}
	if len(rec.rooms) != 0 {
		t.Fatalf("expected no push for self-comment, got %v", rec.rooms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_LookupFailureAborts(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	// 菜谱查不到：整个操作中止，无任何写入/推送
	mock.ExpectQuery("SELECT .* FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if err := ns.LikeApplied(404, 1); err == nil {
		t.Fatalf("expected error for missing recipe")
	}
	if len(rec.rooms) != 0 {
		t.Fatalf("expected no push, got %v", rec.rooms)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_CountUnread(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ns := NewNotificationService(&Service{DB: gormDB, TablePrefix: "sv_"})

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sv_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(3))

	n, err := ns.CountUnread(2)
	if err != nil {
		t.Fatalf("CountUnread: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
