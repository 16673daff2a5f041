package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/unit"
)

// onDamageHook is the Lua global consulted for each landed attack.
const onDamageHook = "on_damage"

// Hooks owns one sandboxed LState loaded with every *.lua file from a
// script directory and dispatches battle callbacks into it.
//
// The LState is single-threaded; the mutex serializes concurrent hook
// calls. Runners sharing one Hooks therefore serialize on it, so give
// each parallel worker its own instance.
type Hooks struct {
	mu     sync.Mutex
	state  *lua.LState
	logger *zap.Logger
}

// LoadHooks creates a sandboxed VM and executes every *.lua file in
// scriptDir in lexicographic order.
//
// Precondition: scriptDir must be a readable directory; logger must be
// non-nil.
// Postcondition: Returns a non-nil Hooks, or an error on Lua load
// failure. The caller must Close it.
func LoadHooks(scriptDir string, instLimit int, logger *zap.Logger) (*Hooks, error) {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState(instLimit)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return nil, fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	return &Hooks{state: L, logger: logger}, nil
}

// Close releases the underlying Lua VM.
func (h *Hooks) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != nil {
		h.state.Close()
		h.state = nil
	}
}

// OnDamage calls the on_damage(attacker, target, damage) Lua global and
// returns the adjusted damage. The hook receives both units as read-only
// snapshot tables. A missing hook, a non-numeric return, or a Lua
// runtime error leaves the damage unchanged; runtime errors are logged
// at Warn and never propagated.
//
// The signature matches the battle runner's damage hook.
func (h *Hooks) OnDamage(attacker, target unit.Unit, damage int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == nil {
		return damage
	}
	L := h.state

	fn := L.GetGlobal(onDamageHook)
	if fn == lua.LNil {
		return damage
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, unitTable(L, attacker), unitTable(L, target), lua.LNumber(damage)); err != nil {
		h.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", onDamageHook),
			zap.Error(err),
		)
		return damage
	}

	ret := L.Get(-1)
	L.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		adjusted := int(n)
		if adjusted < 0 {
			return 0
		}
		return adjusted
	}
	return damage
}

// unitTable builds the read-only snapshot table a hook sees for one unit.
func unitTable(L *lua.LState, u unit.Unit) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(u.ID))
	t.RawSetString("instance_id", lua.LString(u.InstanceID))
	t.RawSetString("team", lua.LNumber(u.Team))
	t.RawSetString("hp", lua.LNumber(u.HP))
	t.RawSetString("max_hp", lua.LNumber(u.MaxHP))
	t.RawSetString("attack", lua.LNumber(u.Attack))
	t.RawSetString("armor", lua.LNumber(u.Armor))
	t.RawSetString("dodge", lua.LNumber(u.Dodge))
	t.RawSetString("role", lua.LString(u.Role))

	tags := L.NewTable()
	for i, tag := range u.Tags {
		tags.RawSetInt(i+1, lua.LString(tag))
	}
	t.RawSetString("tags", tags)
	return t
}
