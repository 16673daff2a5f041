package battle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// RosterUnit is one unit entry in a scenario file. Count > 1 spawns
// copies in a column below the listed position.
type RosterUnit struct {
	ID          string        `yaml:"id"`
	Count       int           `yaml:"count"`
	HP          int           `yaml:"hp"`
	Attack      int           `yaml:"attack"`
	AttackCount int           `yaml:"attack_count"`
	Armor       int           `yaml:"armor"`
	Dodge       int           `yaml:"dodge"`
	Initiative  int           `yaml:"initiative"`
	Speed       int           `yaml:"speed"`
	Range       int           `yaml:"range"`
	Role        string        `yaml:"role"`
	Tags        []string      `yaml:"tags"`
	Position    grid.Position `yaml:"position"`
}

// RosterTeam is one side of a scenario.
type RosterTeam struct {
	Name  string       `yaml:"name"`
	Units []RosterUnit `yaml:"units"`
}

// Roster is a parsed scenario file: exactly two teams and their units.
type Roster struct {
	Teams []RosterTeam `yaml:"teams"`
}

// LoadRoster reads and parses a scenario file.
func LoadRoster(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("reading roster %s: %w", path, err)
	}
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Roster{}, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	return r, nil
}

// BattleState expands the roster into an initial battle snapshot.
// Instance ids are deterministic ("<id>-<team>-<slot>") so that battles
// built from the same roster are reproducible.
//
// Postcondition: On success every unit is alive at full HP, instance ids
// are unique, and no two units share a cell.
func (r Roster) BattleState() (unit.BattleState, error) {
	if len(r.Teams) != 2 {
		return unit.BattleState{}, fmt.Errorf("roster needs exactly 2 teams, got %d", len(r.Teams))
	}

	var st unit.BattleState
	cells := make(map[grid.Position]string)
	for team, t := range r.Teams {
		slot := 0
		for _, ru := range t.Units {
			if err := ru.validate(); err != nil {
				return unit.BattleState{}, fmt.Errorf("team %q unit %q: %w", t.Name, ru.ID, err)
			}
			count := ru.Count
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				pos := grid.Position{X: ru.Position.X, Y: ru.Position.Y + i}
				u := ru.build(team, slot, pos)
				if prev, taken := cells[pos]; taken {
					return unit.BattleState{}, fmt.Errorf("units %q and %q share cell (%d,%d)", prev, u.InstanceID, pos.X, pos.Y)
				}
				cells[pos] = u.InstanceID
				st.Units = append(st.Units, u)
				slot++
			}
		}
	}
	return st, nil
}

func (ru RosterUnit) validate() error {
	switch {
	case ru.ID == "":
		return fmt.Errorf("missing id")
	case ru.HP <= 0:
		return fmt.Errorf("hp must be positive, got %d", ru.HP)
	case ru.Count < 0:
		return fmt.Errorf("count must not be negative, got %d", ru.Count)
	case ru.Dodge < 0 || ru.Dodge > 100:
		return fmt.Errorf("dodge must be in [0,100], got %d", ru.Dodge)
	case ru.Attack < 0:
		return fmt.Errorf("attack must not be negative, got %d", ru.Attack)
	}
	return nil
}

func (ru RosterUnit) build(team, slot int, pos grid.Position) unit.Unit {
	attackCount := ru.AttackCount
	if attackCount == 0 {
		attackCount = 1
	}
	rng := ru.Range
	if rng == 0 {
		rng = 1
	}
	speed := ru.Speed
	if speed == 0 {
		speed = 1
	}
	return unit.Unit{
		ID:          ru.ID,
		InstanceID:  fmt.Sprintf("%s-%d-%d", ru.ID, team, slot),
		Team:        team,
		Alive:       true,
		HP:          ru.HP,
		MaxHP:       ru.HP,
		Attack:      ru.Attack,
		AttackCount: attackCount,
		Armor:       ru.Armor,
		Dodge:       ru.Dodge,
		Initiative:  ru.Initiative,
		Speed:       speed,
		Position:    pos,
		Range:       rng,
		Role:        ru.Role,
		Tags:        append([]string(nil), ru.Tags...),
	}
}
