package store

import (
	"errors"
	"testing"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/models"
)

func mkFile(t *testing.T, db *DB, filename string) *models.File {
	t.Helper()
	f, err := db.CreateFile(models.NewFile{
		Driver: "fs", StorageKey: "blobs/" + filename, Filename: filename,
		SizeBytes: 42, Checksum: strptr("abc123"),
	})
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	return f
}

func TestCreateAndListAttachments(t *testing.T) {
	db := testDB(t)
	file := mkFile(t, db, "scan.pdf")
	note, _ := db.CreateNote(models.NewNote{Body: "body"})

	att, err := db.CreateAttachment(models.NewAttachment{
		FileID: file.ID, EntityType: models.EntityNote, EntityID: note.ID,
		Title: strptr("tax scan"),
	})
	if err != nil {
		t.Fatalf("CreateAttachment: %v", err)
	}
	if att.Title == nil || *att.Title != "tax scan" {
		t.Errorf("title = %v", att.Title)
	}

	list, err := db.ListAttachmentsForEntity(models.EntityNote, note.ID)
	if err != nil {
		t.Fatalf("ListAttachmentsForEntity: %v", err)
	}
	if len(list) != 1 || list[0].FileID != file.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateAttachment_DanglingFileIsConflict(t *testing.T) {
	db := testDB(t)
	_, err := db.CreateAttachment(models.NewAttachment{
		FileID: "no-such-file", EntityType: models.EntityNote, EntityID: "n1",
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict (foreign key)", err)
	}
}

func TestDeleteFile_CascadesAttachments(t *testing.T) {
	db := testDB(t)
	file := mkFile(t, db, "photo.jpg")
	note, _ := db.CreateNote(models.NewNote{Body: "body"})
	_, _ = db.CreateAttachment(models.NewAttachment{FileID: file.ID, EntityType: models.EntityNote, EntityID: note.ID})
	_, _ = db.CreateAttachment(models.NewAttachment{FileID: file.ID, EntityType: models.EntityTask, EntityID: "t1"})

	deleted, err := db.DeleteFile(file.ID)
	if err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if deleted.Filename != "photo.jpg" {
		t.Errorf("deleted = %+v", deleted)
	}
	if n := rowCount(t, db, "attachments"); n != 0 {
		t.Errorf("attachments rows = %d after cascade, want 0", n)
	}

	list, _ := db.ListAttachmentsForEntity(models.EntityNote, note.ID)
	if len(list) != 0 {
		t.Errorf("list = %+v, want empty", list)
	}
}

func TestDeleteAttachment_LeavesFile(t *testing.T) {
	db := testDB(t)
	file := mkFile(t, db, "doc.pdf")
	att, _ := db.CreateAttachment(models.NewAttachment{FileID: file.ID, EntityType: models.EntityNote, EntityID: "n1"})

	removed, err := db.DeleteAttachment(att.ID)
	if err != nil {
		t.Fatalf("DeleteAttachment: %v", err)
	}
	if removed.ID != att.ID {
		t.Errorf("removed = %+v", removed)
	}
	if _, err := db.GetFile(file.ID); err != nil {
		t.Errorf("file gone after attachment delete: %v", err)
	}
}

func TestFileNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetFile("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := db.DeleteFile("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
