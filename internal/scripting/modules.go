package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine table into L:
//
//	engine.roll(lo, hi)  uniform integer in [lo, hi] from the Manager's Ranger
//	engine.log(msg)      debug log line tagged with the script
//
// math.random is rebound to engine.roll semantics so scripted choices replay
// under a seeded Ranger.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("engine", engine)

	if math, ok := L.GetGlobal("math").(*lua.LTable); ok {
		L.SetField(math, "random", L.NewFunction(m.luaRandom))
		L.SetField(math, "randomseed", L.NewFunction(func(*lua.LState) int { return 0 }))
	}
}

func (m *Manager) luaRoll(L *lua.LState) int {
	lo := L.CheckInt(1)
	hi := L.CheckInt(2)
	if lo > hi {
		L.ArgError(2, "hi must be >= lo")
		return 0
	}
	L.Push(lua.LNumber(m.rng.Between(lo, hi)))
	return 1
}

// luaRandom mirrors Lua's math.random arities: (), (m) and (m, n).
func (m *Manager) luaRandom(L *lua.LState) int {
	switch L.GetTop() {
	case 0:
		L.Push(lua.LNumber(float64(m.rng.Between(0, 999_999)) / 1_000_000))
	case 1:
		hi := L.CheckInt(1)
		if hi < 1 {
			L.ArgError(1, "interval is empty")
			return 0
		}
		L.Push(lua.LNumber(m.rng.Between(1, hi)))
	default:
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		if lo > hi {
			L.ArgError(2, "interval is empty")
			return 0
		}
		L.Push(lua.LNumber(m.rng.Between(lo, hi)))
	}
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("script", zap.String("msg", L.CheckString(1)))
	return 0
}
