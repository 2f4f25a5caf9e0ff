package semindex

import (
	"context"
	"errors"
	"testing"
)

func TestFlatIndex_SearchOrdersByDistance(t *testing.T) {
	idx := NewFlatIndex()
	ctx := context.Background()

	ids, err := idx.Add(ctx, [][]float32{
		{0, 0}, // id 0
		{1, 0}, // id 1
		{5, 5}, // id 2
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}

	gotIDs, dists, err := idx.Search(ctx, []float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(gotIDs) != 2 {
		t.Fatalf("len(gotIDs) = %d, want 2", len(gotIDs))
	}
	if gotIDs[0] != 0 || gotIDs[1] != 1 {
		t.Fatalf("gotIDs = %v, want [0 1]", gotIDs)
	}
	if dists[0] > dists[1] {
		t.Fatalf("distances not ascending: %v", dists)
	}
}

func TestFlatIndex_SearchEmptyIndex(t *testing.T) {
	idx := NewFlatIndex()
	_, _, err := idx.Search(context.Background(), []float32{0, 0}, 1)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("error = %v, want ErrEmptyIndex", err)
	}
}

func TestFlatIndex_SearchKClampedToSize(t *testing.T) {
	idx := NewFlatIndex()
	idx.Add(context.Background(), [][]float32{{0}, {1}})

	ids, _, err := idx.Search(context.Background(), []float32{0}, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("len(ids) = %d, want 2 (clamped)", len(ids))
	}
}
