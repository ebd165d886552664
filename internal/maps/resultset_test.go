package maps

import (
	"fmt"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestResultSet(t *testing.T) {
	t.Run("never grows past the cap, earliest cards win", func(t *testing.T) {
		set := NewResultSet(3)
		for i := 0; i < 10; i++ {
			set.Add(Establishment{Name: fmt.Sprintf("Academia %d", i), Category: CategoryGym})
		}

		if set.Len() != 3 {
			t.Fatalf("got %d records, want 3", set.Len())
		}
		for i, rec := range set.Items() {
			if want := fmt.Sprintf("Academia %d", i); rec.Name != want {
				t.Errorf("record %d: got %q, want %q", i, rec.Name, want)
			}
		}
	})

	t.Run("collapses records sharing a dedup key", func(t *testing.T) {
		set := NewResultSet(10)
		set.Add(Establishment{Name: "Academia Alpha", Address: "R. Um, 1"})
		if set.Add(Establishment{Name: "academia  alpha", Address: "r. um,  1"}) {
			t.Error("normalized duplicate should be rejected")
		}
		if !set.Add(Establishment{Name: "Academia Alpha", Address: "R. Dois, 2"}) {
			t.Error("same name at another address is a distinct record")
		}
		if set.Len() != 2 {
			t.Errorf("got %d records, want 2", set.Len())
		}
	})

	t.Run("keeps every degenerate card", func(t *testing.T) {
		set := NewResultSet(10)
		if !set.Add(Establishment{Category: CategoryGym}) {
			t.Error("first nameless card should be kept")
		}
		if !set.Add(Establishment{Category: CategoryGym}) {
			t.Error("a second nameless card should be kept too, not collapsed")
		}
		if set.Len() != 2 {
			t.Errorf("got %d records, want 2", set.Len())
		}
	})

	t.Run("falls back to name-only keys when the address is absent", func(t *testing.T) {
		set := NewResultSet(10)
		set.Add(Establishment{Name: "Sorveteria Sem Endereço"})
		if set.Add(Establishment{Name: "Sorveteria sem endereço"}) {
			t.Error("name-only duplicate should be rejected")
		}
	})
}

// The São Paulo scenario: three cards after one scroll, names A/B/A with
// addresses X/Y/X, cap 3. The duplicate collapses and the cap does not
// bind.
func TestGymScenario(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	x := &Extractor{Log: logger}

	cards := []RawCard{
		{Name: "A", Text: "A\nRua X, 1"},
		{Name: "B", Text: "B\nRua Y, 2"},
		{Name: "A", Text: "A\nRua X, 1"},
	}

	set := NewResultSet(3)
	for _, card := range cards {
		set.Add(x.Extract(card, CategoryGym))
	}

	got := set.Items()
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Name != "A" || got[0].Address != "Rua X, 1" || got[0].Category != CategoryGym {
		t.Errorf("first record: got %+v", got[0])
	}
	if got[1].Name != "B" || got[1].Address != "Rua Y, 2" || got[1].Category != CategoryGym {
		t.Errorf("second record: got %+v", got[1])
	}
}

func TestCategoryQuery(t *testing.T) {
	cases := map[Category]string{
		CategoryGym:          "academias em São Paulo",
		CategoryRestaurant:   "restaurantes em São Paulo",
		CategoryIceCreamShop: "sorveterias em São Paulo",
	}
	for cat, want := range cases {
		if got := cat.Query("São Paulo"); got != want {
			t.Errorf("%s: got %q, want %q", cat, got, want)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("bakery"); err == nil {
		t.Error("unknown category should be rejected")
	}
	got, err := ParseCategory(" Ice_Cream_Shop ")
	if err != nil || got != CategoryIceCreamShop {
		t.Errorf("got %q, %v", got, err)
	}
}
