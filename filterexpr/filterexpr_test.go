package filterexpr

import (
	"context"
	"testing"
)

func TestParse_S6InClause(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, `fileExtension in [".ts", ".py"]`)

	if f == nil {
		t.Fatal("expected a non-nil filter")
	}
	if f.Must != nil || f.MustNot != nil {
		t.Fatalf("expected only Any to be set, got %+v", f)
	}
	if len(f.Any) != 2 {
		t.Fatalf("expected 2 predicates, got %d: %+v", len(f.Any), f.Any)
	}
	want := []Predicate{
		{Field: "fileExtension", Op: OpEq, Value: ".ts"},
		{Field: "fileExtension", Op: OpEq, Value: ".py"},
	}
	for i, w := range want {
		if f.Any[i] != w {
			t.Errorf("predicate[%d] = %+v, want %+v", i, f.Any[i], w)
		}
	}
}

func TestParse_S6NotEquals(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, `status != "archived"`)

	if f == nil {
		t.Fatal("expected a non-nil filter")
	}
	if f.Must != nil || f.Any != nil {
		t.Fatalf("expected only MustNot to be set, got %+v", f)
	}
	want := Predicate{Field: "status", Op: OpEq, Value: "archived"}
	if *f.MustNot != want {
		t.Errorf("MustNot = %+v, want %+v", *f.MustNot, want)
	}
}

func TestParse_S6Garbage(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, "garbage expression")
	if f != nil {
		t.Fatalf("expected nil filter for unrecognized input, got %+v", f)
	}
}

func TestParse_Equals(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, `relativePath == 'src/main.go'`)
	if f == nil {
		t.Fatal("expected a non-nil filter")
	}
	want := Predicate{Field: "relativePath", Op: OpEq, Value: "src/main.go"}
	if *f.Must != want {
		t.Errorf("Must = %+v, want %+v", *f.Must, want)
	}
}

func TestParse_EqualsUnquoted(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, "lineCount == 42")
	if f == nil {
		t.Fatal("expected a non-nil filter")
	}
	want := Predicate{Field: "lineCount", Op: OpEq, Value: "42"}
	if *f.Must != want {
		t.Errorf("Must = %+v, want %+v", *f.Must, want)
	}
}

func TestParse_CaseInsensitiveIn(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, `language IN ["go", "python"]`)
	if f == nil {
		t.Fatal("expected case-insensitive 'IN' keyword to parse")
	}
	if len(f.Any) != 2 {
		t.Fatalf("expected 2 predicates, got %d", len(f.Any))
	}
}

func TestParse_EmptyInput(t *testing.T) {
	ctx := context.Background()
	if f := Parse(ctx, ""); f != nil {
		t.Errorf("expected nil filter for empty input, got %+v", f)
	}
	if f := Parse(ctx, "   "); f != nil {
		t.Errorf("expected nil filter for whitespace-only input, got %+v", f)
	}
}

func TestParse_InWithTrailingComma(t *testing.T) {
	ctx := context.Background()
	f := Parse(ctx, `tag in ["a", "b",]`)
	if f == nil {
		t.Fatal("expected a non-nil filter")
	}
	if len(f.Any) != 2 {
		t.Fatalf("expected trailing comma to be ignored, got %d predicates", len(f.Any))
	}
}
