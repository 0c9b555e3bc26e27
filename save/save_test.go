package save

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/rampet/pet"
)

func testPet() *pet.Pet {
	p := pet.New(pet.Params{
		Name:           "Byte Munch",
		StartingSizeMB: 300,
		Hunger:         42,
		Happiness:      66,
		MetabolismRate: 1.5,
		Rates:          pet.DefaultRates(),
	}, rand.New(rand.NewSource(3)))
	p.Metabolism.Boost(2)
	return p
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pet_save.json")
	saved := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	in := &Snapshot{
		Pet:            testPet(),
		TotalMBEaten:   1234,
		FeedingCount:   17,
		MaxSizeReached: 800,
		PlayTimeSec:    95.5,
		SavedAt:        saved,
	}
	if err := Write(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if out.Version != Version {
		t.Errorf("expected version %d, got %d", Version, out.Version)
	}
	if out.Pet.Name != "Byte Munch" || out.Pet.SizeMB != 300 {
		t.Errorf("pet mismatch: %+v", out.Pet)
	}
	if out.Pet.Hunger != 42 || out.Pet.Happiness != 66 || !out.Pet.Alive {
		t.Errorf("vitals mismatch: %+v", out.Pet)
	}
	if out.Pet.Metabolism == nil || out.Pet.Metabolism.Modifier != 2 || out.Pet.Metabolism.BaseRate != 1.5 {
		t.Errorf("metabolism mismatch: %+v", out.Pet.Metabolism)
	}
	if out.TotalMBEaten != 1234 || out.FeedingCount != 17 || out.MaxSizeReached != 800 {
		t.Errorf("stats mismatch: %+v", out)
	}
	if !out.SavedAt.Equal(saved) {
		t.Errorf("saved_at mismatch: %v", out.SavedAt)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestWrite_NoPet(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "x.json"), &Snapshot{})
	if !errors.Is(err, ErrNoPet) {
		t.Errorf("expected ErrNoPet, got %v", err)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestRead_FutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.json")
	data := []byte(`{"version": 99, "pet": {"name": "x", "size_mb": 10, "alive": true}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}
