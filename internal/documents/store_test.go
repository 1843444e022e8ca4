package documents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ziadkadry99/ragserve/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func seed(t *testing.T, store *Store, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		docType := "text"
		if i%2 == 0 {
			docType = "markdown"
		}
		err := store.Insert(context.Background(), Document{
			ID:           fmt.Sprintf("doc-%d", i),
			Title:        fmt.Sprintf("Document %d", i),
			DocumentType: docType,
			Tags:         []string{fmt.Sprintf("tag%d", i%3)},
			CreatedBy:    "tester",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
			ChunkCount:   3,
			ChunkTotal:   3,
			ChunkKeys:    []string{"emb:aaa", "emb:bbb", "emb:ccc"},
		})
		if err != nil {
			t.Fatalf("Insert doc-%d: %v", i, err)
		}
	}
}

func TestInsertAndGet(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 1)

	doc, err := store.Get(context.Background(), "doc-0")
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("Get returned nil for an existing document")
	}
	if doc.Title != "Document 0" || doc.DocumentType != "markdown" {
		t.Errorf("Get = %+v", doc)
	}
	if len(doc.ChunkKeys) != 3 {
		t.Errorf("ChunkKeys = %v, want 3 keys", doc.ChunkKeys)
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if doc != nil {
		t.Errorf("Get(missing) = %+v, want nil", doc)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 4)

	docs, total, err := store.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || len(docs) != 4 {
		t.Fatalf("List = %d docs, total %d; want 4/4", len(docs), total)
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].CreatedAt.After(docs[i-1].CreatedAt) {
			t.Errorf("documents out of order at %d", i)
		}
	}
}

func TestListPagination(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 5)

	page1, total, err := store.List(context.Background(), ListFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	page2, _, err := store.List(context.Background(), ListFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatal(err)
	}

	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes = %d, %d; want 2, 2", len(page1), len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages overlap")
	}
}

func TestListOffsetWithoutLimit(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 5)

	docs, total, err := store.List(context.Background(), ListFilter{Offset: 2})
	if err != nil {
		t.Fatalf("offset-only list: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(docs) != 3 {
		t.Errorf("got %d documents after offset 2, want 3", len(docs))
	}
}

func TestListFilterByType(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 4)

	docs, total, err := store.List(context.Background(), ListFilter{DocumentType: "markdown"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, doc := range docs {
		if doc.DocumentType != "markdown" {
			t.Errorf("doc %s has type %s", doc.ID, doc.DocumentType)
		}
	}
}

func TestListFilterByTag(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 6)

	docs, _, err := store.List(context.Background(), ListFilter{Tag: "tag1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs for tag1, want 2", len(docs))
	}
	for _, doc := range docs {
		if len(doc.Tags) != 1 || doc.Tags[0] != "tag1" {
			t.Errorf("doc %s tags = %v", doc.ID, doc.Tags)
		}
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, 1)
	ctx := context.Background()

	deleted, err := store.Delete(ctx, "doc-0")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("Delete reported no row for an existing document")
	}

	deleted, err = store.Delete(ctx, "doc-0")
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Error("Delete reported a row for an already-deleted document")
	}
}
