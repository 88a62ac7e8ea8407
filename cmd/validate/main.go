package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

const usage = `Usage:
  %[1]s content [dir]                 check content tables (embedded when dir is omitted)
  %[1]s population <file> [dir]       validate a generated population file
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	v := &Validator{}
	var err error
	switch os.Args[1] {
	case "content":
		dir := ""
		if len(os.Args) > 2 {
			dir = os.Args[2]
		}
		err = v.validateContent(dir)
	case "population":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
			os.Exit(1)
		}
		dir := ""
		if len(os.Args) > 3 {
			dir = os.Args[3]
		}
		err = v.validatePopulationFile(os.Args[2], dir)
	default:
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Valid!")
}

// Validator collects problems across a run and reports them together.
type Validator struct {
	errors []string
}

func (v *Validator) validateContent(dir string) error {
	if dir == "" {
		fmt.Println("Validating embedded content...")
	} else {
		fmt.Printf("Validating content in %s...\n", dir)
	}

	tables, err := content.Load(dir)
	if err != nil {
		return err
	}
	v.errors = nil

	if err := tables.Require(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			v.addError(line)
		}
	}
	for _, diag := range tables.Check() {
		v.addError(diag)
	}
	v.validateIDs(tables)

	if len(v.errors) > 0 {
		return fmt.Errorf("content errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *Validator) validateIDs(tables *content.Tables) {
	for _, t := range tables.Traits {
		v.validateIDFormat("trait ID", t.ID, isValidID)
	}
	for _, o := range tables.Occupations {
		v.validateIDFormat("occupation ID", o.ID, isValidID)
	}
	for _, i := range tables.Injuries {
		v.validateIDFormat("injury ID", i.ID, isValidID)
	}
	for _, it := range tables.Items {
		v.validateIDFormat("item ID", it.ID, isValidItemID)
	}
	for _, l := range tables.Locations {
		v.validateIDFormat("location ID", l.ID, isValidLocationID)
	}
}

func (v *Validator) validatePopulationFile(filename, dir string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	recs, err := decodeRecords(data)
	if err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	tables, err := content.Load(dir)
	if err != nil {
		return err
	}

	v.errors = nil
	for i, rec := range recs {
		migrated, err := npc.Migrate(rec)
		if err != nil {
			v.addError(err.Error())
			continue
		}
		recs[i] = migrated
	}
	if len(v.errors) == 0 {
		for _, msg := range npc.NewValidator(tables).ValidatePopulation(recs) {
			v.addError(msg)
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	fmt.Printf("%d records checked\n", len(recs))
	return nil
}

// decodeRecords accepts either a population envelope or a bare record array.
func decodeRecords(data []byte) ([]*npc.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []*npc.Record
		if err := strictDecode(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}

	var pop npc.Population
	if err := strictDecode(trimmed, &pop); err != nil {
		return nil, err
	}
	return pop.NPCs, nil
}

func strictDecode(data []byte, dst any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func (v *Validator) validateIDFormat(fieldName, id string, valid func(string) bool) {
	if id == "" {
		v.addError(fmt.Sprintf("%s is empty", fieldName))
		return
	}
	if !valid(id) {
		v.addError(fmt.Sprintf("%s '%s' has the wrong format", fieldName, id))
	}
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_-]*[a-z0-9]$`)
	validItemRegex     = regexp.MustCompile(`^itm_[a-z0-9_]*[a-z0-9]$`)
	validLocationRegex = regexp.MustCompile(`^LOC_[A-Za-z0-9_]*[A-Za-z0-9]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidItemID(id string) bool {
	return validItemRegex.MatchString(id)
}

func isValidLocationID(id string) bool {
	return validLocationRegex.MatchString(id)
}
