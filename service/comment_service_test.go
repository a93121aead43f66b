package service

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCommentService_AddComment_BroadcastsToRecipeRoom(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	rec := &roomRecorder{}
	cs := NewCommentService(&Service{DB: gormDB, TablePrefix: "sv_", RoomNotifier: rec.notify})

	mock.ExpectQuery("SELECT \\* FROM `sv_user`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nickname", "avatar"}).
			AddRow(1, "小明", "a.png"))
	mock.ExpectQuery("SELECT \\* FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "title"}).
			AddRow(42, 2, "红烧肉"))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sv_recipe_comment`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("UPDATE `sv_recipe` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dto, err := cs.AddComment(1, 42, "  好吃  ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if dto.Content != "好吃" {
		t.Fatalf("expected trimmed content, got %q", dto.Content)
	}
	if dto.User.Nickname != "小明" {
		t.Fatalf("expected commenter brief, got %+v", dto.User)
	}

	// 评论无条件广播到菜谱房间（含评论者本人）
	if len(rec.rooms) != 1 || rec.rooms[0] != "recipe:42" {
		t.Fatalf("expected broadcast to recipe:42, got %v", rec.rooms)
	}
	p := rec.payloads[0]
	if !strings.Contains(p, `"type":"comment-added"`) || !strings.Contains(p, "好吃") {
		t.Fatalf("unexpected comment event: %s", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCommentService_AddComment_EmptyRejected(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	cs := NewCommentService(&Service{DB: gormDB, TablePrefix: "sv_"})
	if _, err := cs.AddComment(1, 42, "   "); err == nil {
		t.Fatalf("expected error for blank comment")
	}
}
