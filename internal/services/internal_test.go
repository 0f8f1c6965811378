package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"ship-swift-backend/internal/repository"
)

func TestPage(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, defaultPageSize, 0},
		{-3, -1, defaultPageSize, 0},
		{10, 20, 10, 20},
		{1000, 5, maxPageSize, 5},
	}
	for _, c := range cases {
		l, o := page(c.limit, c.offset)
		if l != c.wantLimit || o != c.wantOffset {
			t.Errorf("page(%d,%d) = %d,%d want %d,%d", c.limit, c.offset, l, o, c.wantLimit, c.wantOffset)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "see you at 5"
	if preview(short) != short {
		t.Fatalf("short body changed")
	}

	long := strings.Repeat("é", 200)
	got := preview(long)
	if utf8.RuneCountInString(got) != 123 || !strings.HasSuffix(got, "...") {
		t.Fatalf("preview has %d runes", utf8.RuneCountInString(got))
	}
}

func TestStoreErr(t *testing.T) {
	if storeErr(nil) != nil {
		t.Fatalf("nil error translated")
	}
	if err := storeErr(fmt.Errorf("job %w", repository.ErrNotFound)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("not found: got %v", err)
	}
	if err := storeErr(fmt.Errorf("dup: %w", repository.ErrConflict)); !errors.Is(err, ErrConflict) {
		t.Fatalf("conflict: got %v", err)
	}
	boom := errors.New("boom")
	if storeErr(boom) != boom {
		t.Fatalf("unrelated error rewrapped")
	}

	var ve *ValidationError
	if err := invalid("title", "is required"); !errors.As(err, &ve) || ve.Field != "title" || !errors.Is(err, ErrValidation) {
		t.Fatalf("validation error shape: %v", err)
	}
}
