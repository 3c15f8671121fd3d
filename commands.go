package main

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Command is one admin console line
type Command struct {
	Spawn   *SpawnCommand   `parser:"@@"`
	Despawn *DespawnCommand `parser:"| @@"`
	Max     *int            `parser:"| \"max\" @Number"`
	Rate    *float64        `parser:"| \"rate\" @Number"`
	List    bool            `parser:"| @\"list\""`
	Species bool            `parser:"| @\"species\""`
	Areas   bool            `parser:"| @\"areas\""`
	Help    bool            `parser:"| @\"help\""`
}

// SpawnCommand: spawn [count] [species words] [in area]
type SpawnCommand struct {
	Keyword bool     `parser:"@\"spawn\""`
	Count   *int     `parser:"@Number?"`
	Species []string `parser:"@Ident*"`
	Area    *string  `parser:"( \"in\" @(AreaName | Ident | Number) )?"`
}

// DespawnCommand: despawn (all | id)
type DespawnCommand struct {
	All bool    `parser:"\"despawn\" ( @\"all\""`
	ID  *uint64 `parser:"| @Number )"`
}

var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},

	// Keywords that would otherwise lex as species words
	{Name: "Keyword", Pattern: `\b(?:in|all)\b`},

	{Name: "AreaName", Pattern: `[0-9]+_[0-9]+`},
	{Name: "Number", Pattern: `-?[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-z_][a-z0-9_'-]*`},
})

// CommandParser parses admin console lines
var CommandParser = participle.MustBuild[Command](
	participle.Lexer(commandLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

const maxSpawnPerCommand = 50

// ParseCommand parses one console line. Keywords and species are case
// insensitive.
func ParseCommand(line string) (*Command, error) {
	line = strings.ToLower(strings.TrimSpace(line))
	if line == "" {
		return nil, fmt.Errorf("empty command")
	}
	return CommandParser.ParseString("", line)
}

// CommandRequest carries a console line to the game loop
type CommandRequest struct {
	Line  string
	Reply chan CommandResult
}

// QueueCommand hands a command line to the game loop. The result arrives on
// the returned channel after the next tick.
func (w *World) QueueCommand(line string) <-chan CommandResult {
	reply := make(chan CommandResult, 1)
	select {
	case w.CommandQueue <- CommandRequest{Line: line, Reply: reply}:
	default:
		reply <- CommandResult{Output: "command queue full"}
	}
	return reply
}

// ProcessCommands drains the command queue
func (w *World) ProcessCommands() {
	for {
		select {
		case req := <-w.CommandQueue:
			req.Reply <- w.ExecuteCommand(req.Line)
		default:
			return
		}
	}
}

// ExecuteCommand parses and runs one command line against the simulation.
// Callers must hold the world lock or own the game loop.
func (w *World) ExecuteCommand(line string) CommandResult {
	cmd, err := ParseCommand(line)
	if err != nil {
		return CommandResult{Output: fmt.Sprintf("parse error: %v", err)}
	}

	var out string
	switch {
	case cmd.Spawn != nil:
		out, err = w.runSpawn(cmd.Spawn)
	case cmd.Despawn != nil:
		out, err = w.runDespawn(cmd.Despawn)
	case cmd.Max != nil:
		if *cmd.Max < 0 {
			err = fmt.Errorf("max must not be negative")
			break
		}
		w.Sim.SetMaxActiveFish(*cmd.Max)
		out = fmt.Sprintf("max active fish set to %d (%d active)", *cmd.Max, w.Sim.Pool.Len())
	case cmd.Rate != nil:
		w.Sim.SetSpawnRate(*cmd.Rate)
		out = fmt.Sprintf("spawn rate set to %.2f/s", w.Sim.SpawnRate())
	case cmd.List:
		out = w.listFish()
	case cmd.Species:
		out = w.listSpecies()
	case cmd.Areas:
		out = w.listAreas()
	case cmd.Help:
		out = "commands: spawn [n] [species] [in area], despawn <id>|all, max <n>, rate <r>, list, species, areas"
	}

	if err != nil {
		log.Printf("Command %q failed: %v", line, err)
		return CommandResult{Output: err.Error()}
	}
	log.Printf("Command %q: %s", line, out)
	return CommandResult{OK: true, Output: out}
}

func (w *World) runSpawn(c *SpawnCommand) (string, error) {
	count := 1
	if c.Count != nil {
		count = *c.Count
	}
	if count < 1 || count > maxSpawnPerCommand {
		return "", fmt.Errorf("count must be between 1 and %d", maxSpawnPerCommand)
	}

	area, err := w.resolveArea(c.Area)
	if err != nil {
		return "", err
	}

	typ := FishTypeID(-1)
	if len(c.Species) > 0 {
		typ, err = w.Sim.Registry.Lookup(strings.Join(c.Species, " "))
		if err != nil {
			return "", err
		}
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		var f *Fish
		if typ >= 0 {
			f, err = w.Sim.SpawnFishOfType(area, typ)
		} else {
			f, err = w.Sim.SpawnFish(area)
		}
		if err != nil {
			if errors.Is(err, ErrPoolFull) && len(ids) > 0 {
				break
			}
			return "", err
		}
		ids = append(ids, fmt.Sprintf("#%d %s", f.ID, w.Sim.Registry.Info(f.Type).Name))
	}

	name := w.Sim.Map.Areas()[area].Name
	return fmt.Sprintf("spawned %d in %s: %s", len(ids), name, strings.Join(ids, ", ")), nil
}

// resolveArea maps an area name or index onto an id. No name picks the first
// area that has fish.
func (w *World) resolveArea(name *string) (AreaID, error) {
	areas := w.Sim.Map.Areas()
	if name == nil {
		for i, a := range areas {
			if a.HasFish {
				return AreaID(i), nil
			}
		}
		return 0, nil
	}
	for i, a := range areas {
		if strings.EqualFold(a.Name, *name) {
			return AreaID(i), nil
		}
	}
	if n, err := strconv.Atoi(*name); err == nil {
		if _, err := w.Sim.Map.Area(AreaID(n)); err == nil {
			return AreaID(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownArea, *name)
}

func (w *World) runDespawn(c *DespawnCommand) (string, error) {
	if c.All {
		n := w.Sim.DespawnAll()
		return fmt.Sprintf("despawned %d fish", n), nil
	}
	id := FishID(*c.ID)
	if !w.Sim.DespawnFish(id) {
		return "", fmt.Errorf("%w: #%d", ErrUnknownFish, id)
	}
	return fmt.Sprintf("despawned #%d", id), nil
}

func (w *World) listFish() string {
	views := w.Sim.Views()
	if len(views) == 0 {
		return fmt.Sprintf("no fish (max %d)", w.Sim.Pool.MaxActive())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d/%d fish", len(views), w.Sim.Pool.MaxActive())
	for _, v := range views {
		fmt.Fprintf(&sb, "\n#%d %s area=%d %s (%.2f, %.2f, %.2f)",
			v.ID, v.Name, v.Area, v.State, v.Position.X, v.Position.Y, v.Position.Z)
	}
	return sb.String()
}

func (w *World) listSpecies() string {
	var sb strings.Builder
	for i, info := range w.Sim.Registry.All() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d %s points=%d catch=%.2f difficulty=%.2f weight=%.2f",
			i, info.Name, info.Points, info.CatchChance, info.Difficulty, info.SpawnProbability)
	}
	return sb.String()
}

func (w *World) listAreas() string {
	var sb strings.Builder
	for i, a := range w.Sim.Map.Areas() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d %s fish=%t active=%d", i, a.Name, a.HasFish, w.Sim.Pool.CountInArea(AreaID(i)))
	}
	return sb.String()
}
