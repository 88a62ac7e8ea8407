package npc

import (
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/content"
	"github.com/jwebster45206/npc-engine/pkg/rng"
)

const (
	paramedicOccupation = "paramedic"

	weekdays = "Mon-Fri"
	everyDay = "*"
)

// generateSchedule returns the occupation's work blocks followed by one
// errand block and one overnight block at home.
func (g *Generator) generateSchedule(occ content.Occupation) ([]content.ScheduleBlock, error) {
	home := g.opts.HomeFallback
	if residences := g.tables.ResidentialLocations(); len(residences) > 0 {
		picked, err := rng.Pick(g.rng, residences)
		if err != nil {
			return nil, fmt.Errorf("pick home: %w", err)
		}
		home = picked
	}

	var blocks []content.ScheduleBlock
	if authored := g.tables.Schedules[scheduleKey(occ)]; len(authored) > 0 {
		blocks = append(blocks, authored...)
	} else {
		at, err := g.workLocation(occ)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, content.ScheduleBlock{Days: weekdays, Start: "09:00", End: "17:00", At: at})
	}

	errand, err := rng.Pick(g.rng, g.tables.LocationIDs())
	if err != nil {
		return nil, fmt.Errorf("pick errand location: %w", err)
	}

	return append(blocks,
		content.ScheduleBlock{Days: weekdays, Start: "15:30", End: "18:00", At: errand},
		content.ScheduleBlock{Days: everyDay, Start: "22:30", End: "06:30", At: home},
	), nil
}

func scheduleKey(occ content.Occupation) string {
	if occ.Schedule != "" {
		return occ.Schedule
	}
	return occ.ID
}

// workLocation picks a fallback workplace. Paramedics work at the clinic
// whenever the tables define one.
func (g *Generator) workLocation(occ content.Occupation) (string, error) {
	if occ.ID == paramedicOccupation {
		if _, ok := g.tables.Location(g.opts.ClinicLocation); ok {
			return g.opts.ClinicLocation, nil
		}
	}
	at, err := rng.Pick(g.rng, g.tables.PublicLocations())
	if err != nil {
		return "", fmt.Errorf("pick work location: %w", err)
	}
	return at, nil
}
