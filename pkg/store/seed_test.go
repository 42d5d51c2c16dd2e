package store

import "testing"

func TestSeedBooksPopulatesEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	if err := SeedBooks(s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	count, err := s.CountBooks("")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if int(count) != len(SampleBooks()) {
		t.Fatalf("expected %d books, got %d", len(SampleBooks()), count)
	}
}

func TestSeedBooksIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := SeedBooks(s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedBooks(s); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	count, _ := s.CountBooks("")
	if int(count) != len(SampleBooks()) {
		t.Fatalf("expected seeding to be skipped on non-empty store, got %d", count)
	}
}

func TestSeedBooksSkipsNonEmptyStore(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.CreateBook(SampleBooks()[0]); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := SeedBooks(s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	count, _ := s.CountBooks("")
	if count != 1 {
		t.Fatalf("expected store left untouched, got %d books", count)
	}
}
