package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLikeService_Toggle_Like(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ls := NewLikeService(&Service{DB: gormDB, TablePrefix: "sv_"})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sv_recipe_like`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `sv_recipe` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT `likes_cnt` FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"likes_cnt"}).AddRow(5))

	cnt, err := ls.Toggle(1, 42, true)
	if err != nil {
		t.Fatalf("Toggle like: %v", err)
	}
	if cnt != 5 {
		t.Fatalf("expected 5 likes, got %d", cnt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLikeService_Toggle_DuplicateLikeKeepsCounter(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ls := NewLikeService(&Service{DB: gormDB, TablePrefix: "sv_"})

	mock.ExpectBegin()
	// (recipe_id, user_id) 唯一索引命中：DoNothing，0 行受影响，计数不动
	mock.ExpectExec("INSERT INTO `sv_recipe_like`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT `likes_cnt` FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"likes_cnt"}).AddRow(5))

	cnt, err := ls.Toggle(1, 42, true)
	if err != nil {
		t.Fatalf("Toggle duplicate like: %v", err)
	}
	if cnt != 5 {
		t.Fatalf("expected 5 likes, got %d", cnt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLikeService_Toggle_Unlike(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()

	ls := NewLikeService(&Service{DB: gormDB, TablePrefix: "sv_"})

	mock.ExpectBegin()
	// RecipeLike 无软删字段：Delete 是真 DELETE
	mock.ExpectExec("DELETE FROM `sv_recipe_like`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `sv_recipe` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT `likes_cnt` FROM `sv_recipe`").
		WillReturnRows(sqlmock.NewRows([]string{"likes_cnt"}).AddRow(4))

	cnt, err := ls.Toggle(1, 42, false)
	if err != nil {
		t.Fatalf("Toggle unlike: %v", err)
	}
	if cnt != 4 {
		t.Fatalf("expected 4 likes, got %d", cnt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
