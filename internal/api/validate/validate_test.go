package validate

import (
	"testing"
)

type item struct {
	ID string `json:"id" validate:"required"`
}

type sample struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Score float64 `json:"score" validate:"gte=0"`
	Items []item  `json:"items" validate:"dive"`
}

func TestStruct(t *testing.T) {
	if err := Struct(sample{Name: "ok"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	cases := []struct {
		name string
		in   sample
		want string
	}{
		{"missing name", sample{}, "name is required"},
		{"too long", sample{Name: "toolong"}, "name exceeds 5 characters"},
		{"negative", sample{Name: "a", Score: -1}, "score must be >= 0"},
		{"nested", sample{Name: "a", Items: []item{{}}}, "items[0].id is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in)
			if err == nil || err.Error() != tc.want {
				t.Fatalf("got %v, want %q", err, tc.want)
			}
		})
	}
}
