package store_test

import (
	"errors"
	"testing"

	"github.com/anragh/medialog/internal/models"
	"github.com/anragh/medialog/internal/store"
	"github.com/anragh/medialog/internal/testutil"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int { return &n }
func ratingPtr(f float64) *float64 { return &f }

func TestCreateContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	t.Run("book with defaults", func(t *testing.T) {
		item, err := s.CreateContent(models.CreateContentInput{
			Title:    "Dune",
			Category: models.CategoryBook,
			Author:   strPtr("Frank Herbert"),
			Tags:     []string{"sci-fi", "classic"},
		})
		if err != nil {
			t.Fatalf("CreateContent failed: %v", err)
		}
		if item.ID < 1 {
			t.Errorf("Expected assigned id >= 1, got %d", item.ID)
		}
		if item.Status != models.StatusTodo {
			t.Errorf("Expected default status todo, got %s", item.Status)
		}
		if item.Rating != nil {
			t.Errorf("Expected no rating on a fresh item, got %v", *item.Rating)
		}
		if item.DateAdded.IsZero() {
			t.Error("Expected date_added to be set")
		}
		if item.Book == nil || item.Book.Author == nil || *item.Book.Author != "Frank Herbert" {
			t.Errorf("Book details not persisted: %+v", item.Book)
		}
		if len(item.Book.Tags) != 2 {
			t.Errorf("Expected 2 tags, got %v", item.Book.Tags)
		}
		if item.TVMovie != nil || item.Podcast != nil || item.Drama != nil {
			t.Error("Only the book detail struct should be populated")
		}
	})

	t.Run("title is trimmed and required", func(t *testing.T) {
		_, err := s.CreateContent(models.CreateContentInput{Title: "   ", Category: models.CategoryBook})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for blank title, got %v", err)
		}
	})

	t.Run("tvmovie requires subtype", func(t *testing.T) {
		_, err := s.CreateContent(models.CreateContentInput{Title: "Severance", Category: models.CategoryTVMovie})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for missing subtype, got %v", err)
		}
	})

	t.Run("drama rejects foreign subtype", func(t *testing.T) {
		_, err := s.CreateContent(models.CreateContentInput{
			Title:    "Hamilton",
			Category: models.CategoryDrama,
			Subtype:  models.SubtypeTV,
		})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for tv subtype on drama, got %v", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := s.CreateContent(models.CreateContentInput{Title: "X", Category: "vinyl"})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for unknown category, got %v", err)
		}
	})

	t.Run("cross-category fields are nulled", func(t *testing.T) {
		item, err := s.CreateContent(models.CreateContentInput{
			Title:    "The Rest Is History",
			Category: models.CategoryPodcast,
			Hosts:    []string{"Tom Holland", "Dominic Sandbrook"},
			Author:   strPtr("should not stick"),
		})
		if err != nil {
			t.Fatalf("CreateContent failed: %v", err)
		}
		if item.Podcast == nil || len(item.Podcast.Hosts) != 2 {
			t.Errorf("Podcast details not persisted: %+v", item.Podcast)
		}
		if item.Book != nil {
			t.Error("Author from another category must not be stored")
		}
	})
}

func TestGetContentByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	item, _ := s.CreateContent(models.CreateContentInput{Title: "Dune", Category: models.CategoryBook})

	got, err := s.GetContentByID(item.ID)
	if err != nil {
		t.Fatalf("GetContentByID failed: %v", err)
	}
	if got == nil || got.Title != "Dune" {
		t.Errorf("Expected Dune, got %+v", got)
	}

	// A miss is a nil result, not an error: callers probe for existence.
	got, err = s.GetContentByID(9999)
	if err != nil {
		t.Fatalf("GetContentByID on missing id errored: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing id, got %+v", got)
	}
}

func TestListContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	s.CreateContent(models.CreateContentInput{Title: "A", Category: models.CategoryBook})
	s.CreateContent(models.CreateContentInput{Title: "B", Category: models.CategoryPodcast, Status: models.StatusDone})
	s.CreateContent(models.CreateContentInput{Title: "C", Category: models.CategoryBook, Status: models.StatusDone})

	all, err := s.ListContent(models.ContentFilter{})
	if err != nil {
		t.Fatalf("ListContent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(all))
	}
	// Most recently added first; same-timestamp rows fall back to id order.
	if all[0].Title != "C" || all[2].Title != "A" {
		t.Errorf("Expected newest-first ordering, got %s..%s", all[0].Title, all[2].Title)
	}

	done := models.StatusDone
	book := models.CategoryBook
	filtered, err := s.ListContent(models.ContentFilter{Status: &done, Category: &book})
	if err != nil {
		t.Fatalf("ListContent with filter failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "C" {
		t.Errorf("Expected only C, got %+v", filtered)
	}
}

func TestSparseUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	item, _ := s.CreateContent(models.CreateContentInput{
		Title:    "Dune",
		Category: models.CategoryBook,
		Author:   strPtr("Frank Herbert"),
		Year:     intPtr(1965),
		Tags:     []string{"sci-fi"},
	})

	t.Run("only mentioned fields change", func(t *testing.T) {
		updated, err := s.UpdateContent(item.ID, models.ContentPatch{
			Status: models.Set(models.StatusDone),
		})
		if err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
		if updated.Status != models.StatusDone {
			t.Errorf("Expected status done, got %s", updated.Status)
		}
		if updated.Title != "Dune" {
			t.Errorf("Title must be untouched, got %q", updated.Title)
		}
		if updated.Year == nil || *updated.Year != 1965 {
			t.Errorf("Year must be untouched, got %v", updated.Year)
		}
		if updated.Book == nil || updated.Book.Author == nil || *updated.Book.Author != "Frank Herbert" {
			t.Errorf("Author must be untouched, got %+v", updated.Book)
		}
		if updated.DateAdded != item.DateAdded {
			t.Error("DateAdded must never change")
		}
	})

	t.Run("explicit null clears", func(t *testing.T) {
		updated, err := s.UpdateContent(item.ID, models.ContentPatch{
			Year: models.Null[int](),
		})
		if err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
		if updated.Year != nil {
			t.Errorf("Expected year cleared, got %v", *updated.Year)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := s.UpdateContent(item.ID, models.ContentPatch{Title: models.Set("  ")})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
		_, err = s.UpdateContent(item.ID, models.ContentPatch{Title: models.Null[string]()})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for nulled title, got %v", err)
		}
	})

	t.Run("out of range rating rejected", func(t *testing.T) {
		_, err := s.UpdateContent(item.ID, models.ContentPatch{Rating: models.Set(5.5)})
		if !store.IsValidation(err) {
			t.Errorf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("missing id is ErrNotFound", func(t *testing.T) {
		_, err := s.UpdateContent(9999, models.ContentPatch{Status: models.Set(models.StatusDone)})
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("subtype stays within category", func(t *testing.T) {
		show, _ := s.CreateContent(models.CreateContentInput{
			Title:    "Severance",
			Category: models.CategoryTVMovie,
			Subtype:  models.SubtypeTV,
		})
		updated, err := s.UpdateContent(show.ID, models.ContentPatch{Subtype: models.Set(models.SubtypeMovie)})
		if err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
		if updated.TVMovie.Subtype != models.SubtypeMovie {
			t.Errorf("Expected subtype movie, got %s", updated.TVMovie.Subtype)
		}
		if _, err := s.UpdateContent(show.ID, models.ContentPatch{Subtype: models.Set(models.SubtypePlay)}); !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for play subtype on tvmovie, got %v", err)
		}
		if _, err := s.UpdateContent(item.ID, models.ContentPatch{Subtype: models.Set(models.SubtypeTV)}); !store.IsValidation(err) {
			t.Errorf("Expected ValidationError for subtype on a book, got %v", err)
		}
	})
}

func TestDeleteContentCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	item, _ := s.CreateContent(models.CreateContentInput{Title: "Dune", Category: models.CategoryBook})
	s.CreateRecord(models.CreateRecordInput{ContentItemID: item.ID, DateConsumed: mustDate(t, "2024-01-01"), Rating: ratingPtr(4)})
	s.CreateRecord(models.CreateRecordInput{ContentItemID: item.ID, DateConsumed: mustDate(t, "2024-06-01")})

	deleted, err := s.DeleteContent(item.ID)
	if err != nil {
		t.Fatalf("DeleteContent failed: %v", err)
	}
	if !deleted {
		t.Fatal("Expected DeleteContent to report a removed row")
	}

	got, err := s.GetContentByID(item.ID)
	if err != nil || got != nil {
		t.Errorf("Expected item gone, got %+v (err %v)", got, err)
	}
	records, err := s.ListRecordsByContentItem(item.ID)
	if err != nil {
		t.Fatalf("ListRecordsByContentItem failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected records cascade-deleted, got %d", len(records))
	}

	deleted, err = s.DeleteContent(item.ID)
	if err != nil {
		t.Fatalf("Second DeleteContent errored: %v", err)
	}
	if deleted {
		t.Error("Second delete must report no removed row")
	}
}

func TestFindExistingContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	item, _ := s.CreateContent(models.CreateContentInput{Title: "Dune", Category: models.CategoryBook})
	s.CreateContent(models.CreateContentInput{
		Title:    "Dune",
		Category: models.CategoryTVMovie,
		Subtype:  models.SubtypeMovie,
	})

	// Title matching is case-insensitive exact.
	found, err := s.FindExistingContent("dune", models.CategoryBook, "")
	if err != nil {
		t.Fatalf("FindExistingContent failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Errorf("Expected the book Dune, got %+v", found)
	}

	found, _ = s.FindExistingContent("DUNE", models.CategoryTVMovie, models.SubtypeMovie)
	if found == nil || found.TVMovie == nil {
		t.Errorf("Expected the movie Dune, got %+v", found)
	}

	found, _ = s.FindExistingContent("dune", models.CategoryTVMovie, models.SubtypeTV)
	if found != nil {
		t.Errorf("Subtype mismatch must not match, got %+v", found)
	}

	found, _ = s.FindExistingContent("dune ii", models.CategoryBook, "")
	if found != nil {
		t.Errorf("Expected no match for different title, got %+v", found)
	}
}

func TestSearchContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	s.CreateContent(models.CreateContentInput{Title: "Dune", Category: models.CategoryBook, Author: strPtr("Frank Herbert")})
	s.CreateContent(models.CreateContentInput{
		Title:     "Blade Runner",
		Category:  models.CategoryTVMovie,
		Subtype:   models.SubtypeMovie,
		Directors: []string{"Ridley Scott"},
	})
	s.CreateContent(models.CreateContentInput{
		Title:    "The Rest Is History",
		Category: models.CategoryPodcast,
		Hosts:    []string{"Tom Holland"},
		Status:   models.StatusDone,
	})

	t.Run("matches title substring", func(t *testing.T) {
		results, err := s.SearchContent("blade", nil, nil)
		if err != nil {
			t.Fatalf("SearchContent failed: %v", err)
		}
		if len(results) != 1 || results[0].Title != "Blade Runner" {
			t.Errorf("Expected Blade Runner, got %+v", results)
		}
	})

	t.Run("matches creator-like fields", func(t *testing.T) {
		results, _ := s.SearchContent("herbert", nil, nil)
		if len(results) != 1 || results[0].Title != "Dune" {
			t.Errorf("Expected author match for Dune, got %d results", len(results))
		}
		results, _ = s.SearchContent("ridley", nil, nil)
		if len(results) != 1 || results[0].Title != "Blade Runner" {
			t.Errorf("Expected director match, got %d results", len(results))
		}
		results, _ = s.SearchContent("tom holland", nil, nil)
		if len(results) != 1 || results[0].Title != "The Rest Is History" {
			t.Errorf("Expected host match, got %d results", len(results))
		}
	})

	t.Run("narrows by status and category", func(t *testing.T) {
		done := models.StatusDone
		results, _ := s.SearchContent("history", &done, nil)
		if len(results) != 1 {
			t.Errorf("Expected 1 done match, got %d", len(results))
		}
		todo := models.StatusTodo
		results, _ = s.SearchContent("history", &todo, nil)
		if len(results) != 0 {
			t.Errorf("Expected no todo match, got %d", len(results))
		}
	})
}

func TestCountContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db)

	s.CreateContent(models.CreateContentInput{Title: "A", Category: models.CategoryBook})
	s.CreateContent(models.CreateContentInput{Title: "B", Category: models.CategoryBook, Status: models.StatusDone})

	n, err := s.CountContent(nil)
	if err != nil || n != 2 {
		t.Errorf("Expected total 2, got %d (err %v)", n, err)
	}
	done := models.StatusDone
	n, err = s.CountContent(&done)
	if err != nil || n != 1 {
		t.Errorf("Expected 1 done, got %d (err %v)", n, err)
	}
}
