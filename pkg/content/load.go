package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var defaultData embed.FS

// ErrMissingTable marks a required content table that is absent or empty.
var ErrMissingTable = errors.New("missing content table")

// table file basenames, one file per table
const (
	fileEnums          = "enums"
	fileTraits         = "traits"
	fileOccupations    = "occupations"
	fileInjuries       = "injuries"
	fileItems          = "items"
	fileEquipmentPools = "equipment_pools"
	fileSchedules      = "schedules"
	fileLocations      = "locations"
	fileNames          = "names"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Default returns the tables compiled into the binary.
func Default() (*Tables, error) {
	t, err := LoadFS(defaultData, "data")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded content: %w", err)
	}
	return t, nil
}

// Load returns the embedded tables when dir is empty and the tables in dir
// otherwise.
func Load(dir string) (*Tables, error) {
	if dir == "" {
		return Default()
	}
	return LoadDir(dir)
}

// LoadDir reads one file per table from dir. Each table may be authored as
// JSON or YAML. Tables without a file are left empty; call Require to turn
// that into an error.
func LoadDir(dir string) (*Tables, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads the tables from dir inside fsys.
func LoadFS(fsys fs.FS, dir string) (*Tables, error) {
	t := &Tables{}
	targets := []struct {
		name string
		dst  any
	}{
		{fileEnums, &t.Enums},
		{fileTraits, &t.Traits},
		{fileOccupations, &t.Occupations},
		{fileInjuries, &t.Injuries},
		{fileItems, &t.Items},
		{fileEquipmentPools, &t.EquipmentPools},
		{fileSchedules, &t.Schedules},
		{fileLocations, &t.Locations},
		{fileNames, &t.Names},
	}

	for _, target := range targets {
		if err := decodeTable(fsys, dir, target.name, target.dst); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeTable(fsys fs.FS, dir, name string, dst any) error {
	for _, ext := range extensions {
		p := path.Join(dir, name+ext)
		data, err := fs.ReadFile(fsys, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		if ext == ".json" {
			err = decodeJSON(data, dst)
		} else {
			err = decodeYAML(data, dst)
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", p, err)
		}
		return nil
	}
	return nil
}

func decodeJSON(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func decodeYAML(data []byte, dst any) error {
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(dst)
}

// Require reports every table the generator cannot run without. The
// returned error wraps ErrMissingTable.
func (t *Tables) Require() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingTable, name))
	}

	if len(t.Occupations) == 0 {
		missing("occupations")
	}
	if len(t.Traits) == 0 {
		missing("traits")
	}
	if len(t.Injuries) == 0 {
		missing("injuries")
	}
	if len(t.Locations) == 0 {
		missing("locations")
	}
	if len(t.EquipmentPools.ClothingBody) == 0 {
		missing("equipmentPools.clothing_body")
	}
	if len(t.EquipmentPools.ClothingHands) == 0 {
		missing("equipmentPools.clothing_hands")
	}
	if len(t.EquipmentPools.MainHand) == 0 {
		missing("equipmentPools.mainHand")
	}
	if len(t.Names.Prefixes) == 0 || len(t.Names.Middles) == 0 || len(t.Names.Suffixes) == 0 {
		missing("names")
	}

	e := t.Enums
	required := []struct {
		name string
		n    int
	}{
		{"enums.species", len(e.Species)},
		{"enums.genders", len(e.Genders)},
		{"enums.pronouns", len(e.Pronouns)},
		{"enums.wards", len(e.Wards)},
		{"enums.bodyStatus", len(e.BodyStatus)},
		{"enums.bodyParts", len(e.BodyParts)},
		{"enums.builds", len(e.Builds)},
		{"enums.hairColors", len(e.HairColors)},
		{"enums.hairLengths", len(e.HairLengths)},
		{"enums.eyeColors", len(e.EyeColors)},
		{"enums.skinTones", len(e.SkinTones)},
		{"enums.distinguishingMarks", len(e.DistinguishingMarks)},
		{"enums.combatTactics", len(e.CombatTactics)},
		{"enums.dialogueStyles", len(e.DialogueStyles)},
	}
	for _, r := range required {
		if r.n == 0 {
			missing(r.name)
		}
	}

	return errors.Join(errs...)
}
