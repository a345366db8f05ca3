package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kicadNetlist = `(export (version D)
  (design (source "board.kicad_sch"))
  (components
    (comp (ref R1) (value 10k)
      (libsource (lib Device) (part R) (description "Resistor")))
    (comp (ref C1) (value 100nF) (description "Decoupling cap")
      (libsource (lib Device) (part C)))
    (comp (ref "") (value orphan)))
  (nets
    (net (code 1) (name GND) (node (ref C1) (pin 2)))))
`

func TestMemoryRepositoryUpsert(t *testing.T) {
	repo := NewMemoryRepository(
		Descriptor{Designator: "R1", Value: "10k"},
		Descriptor{Designator: "C1", Value: "1uF"},
		Descriptor{Designator: "  "},
	)
	require.Equal(t, 2, repo.Len())

	repo.Upsert(Descriptor{Designator: "R1", Value: "4k7"}, Descriptor{Designator: "U1"})

	got := designators(repo.List())
	assert.Equal(t, []string{"R1", "C1", "U1"}, got)

	d, ok := repo.Lookup("R1")
	require.True(t, ok)
	assert.Equal(t, "4k7", d.Value)

	_, ok = repo.Lookup("r1")
	assert.False(t, ok, "lookup is exact")

	assert.Equal(t, []string{"C1"}, designators(repo.Search("1uf")))
}

func TestMemoryRepositoryListIsCopy(t *testing.T) {
	repo := NewMemoryRepository(Descriptor{Designator: "R1"})
	list := repo.List()
	list[0].Designator = "changed"
	if _, ok := repo.Lookup("R1"); !ok {
		t.Fatalf("mutating List() result changed the repository")
	}
}

func TestMemoryRepositoryConcurrent(t *testing.T) {
	repo := NewMemoryRepository()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			repo.Upsert(Descriptor{Designator: string(rune('A' + i))})
			_ = repo.Search("a")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, repo.Len())
}

func TestLoadJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"array", `[{"designator":"R1","type":"resistor"},{"designator":""}]`, []string{"R1"}},
		{"object", `{"components":[{"designator":"C1"},{"designator":"C2"}]}`, []string{"C1", "C2"}},
		{"empty", `  `, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadJSON(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, designators(got))
		})
	}

	_, err := LoadJSON(strings.NewReader(`[{"designator":`))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	got, err := LoadYAML(strings.NewReader("- designator: R1\n  value: 10k\n- designator: R2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R2"}, designators(got))
	assert.Equal(t, "10k", got[0].Value)

	got, err = LoadYAML(strings.NewReader("components:\n  - designator: U1\n    type: MCU\n"))
	require.NoError(t, err)
	assert.Equal(t, []Descriptor{{Designator: "U1", Type: "MCU"}}, got)
}

func TestLoadKiCadNetlist(t *testing.T) {
	got, err := LoadKiCadNetlist(strings.NewReader(kicadNetlist))
	require.NoError(t, err)

	want := []Descriptor{
		{Designator: "R1", Type: "R", Value: "10k", Description: "Resistor"},
		{Designator: "C1", Type: "C", Value: "100nF", Description: "Decoupling cap"},
	}
	assert.Equal(t, want, got)

	_, err = LoadKiCadNetlist(strings.NewReader(`(kicad_sch (version 1))`))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"designator":"R1"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.net"), []byte(kicadNetlist), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	repo := NewMemoryRepository()
	require.NoError(t, repo.LoadDir(dir))
	assert.ElementsMatch(t, []string{"R1", "C1"}, designators(repo.List()))
	d, ok := repo.Lookup("R1")
	require.True(t, ok)
	assert.Equal(t, "R", d.Type, "later file upserts over earlier")
}

func TestLoadFileUnknownFormat(t *testing.T) {
	_, err := LoadFile("components.csv")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	repo := NewMemoryRepository()
	err = repo.LoadFiles(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadFileParseErrorPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, path+": catalog: json: "), msg)
	assert.Equal(t, 1, strings.Count(msg, "catalog:"), msg)
}
