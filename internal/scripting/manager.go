package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/catchemall/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when a trainer has no VM of its own.
const globalScope = "__global__"

// vm is one trainer's Lua state. LStates are single-threaded, so every use
// holds mu.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel context.CancelFunc
	limit  int
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
	}
	v.L.Close()
}

// Manager owns one sandboxed LState per trainer and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same trainer's VM are
// serialized; different trainers run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	rng    dice.Ranger
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: rng and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no VMs loaded.
func NewManager(rng dice.Ranger, logger *zap.Logger) *Manager {
	if rng == nil {
		panic("scripting.NewManager: rng must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		rng:    rng,
		logger: logger,
	}
}

// LoadTrainer creates a sandboxed VM for trainerID, registers the engine
// module, then executes every *.lua file in scriptDir in lexicographic order.
// Loading the same trainer again replaces its VM.
//
// Precondition: trainerID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Trainer VM is registered; returns error on Lua load failure.
func (m *Manager) LoadTrainer(trainerID, scriptDir string, instLimit int) error {
	if trainerID == "" {
		return fmt.Errorf("scripting: trainer id must not be empty")
	}
	return m.loadInto(trainerID, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as a CallHook fallback for trainers
// without scripts of their own.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, cancel: cancel, limit: resolveLimit(instLimit)}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Debug("scripts loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

func (m *Manager) lookup(trainerID string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[trainerID]; ok {
		return v
	}
	return m.vms[globalScope]
}

// CallHook calls the named Lua global function in trainerID's VM. If the
// trainer has no VM, the global VM is tried as a fallback. Returns (LNil, nil)
// if the hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted opcode budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances that do not belong to
// another LState.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(trainerID, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(trainerID, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallLineHook calls hook with a single string argument and returns its
// answer. It returns ("", false) when no hook ran or the answer is not a
// non-empty string.
func (m *Manager) CallLineHook(trainerID, hook, arg string) (string, bool) {
	ret, _ := m.CallHook(trainerID, hook, lua.LString(arg))
	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// CallStringsHook calls hook with a Lua array built from in and returns the
// hook's result converted to strings. It returns (nil, false) when no hook
// ran or the hook returned something other than an array of strings.
func (m *Manager) CallStringsHook(trainerID, hook string, in []string) ([]string, bool) {
	ret, _ := m.call(trainerID, hook, func(L *lua.LState) []lua.LValue {
		tbl := L.NewTable()
		for _, s := range in {
			tbl.Append(lua.LString(s))
		}
		return []lua.LValue{tbl}
	})
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, false
	}
	n := tbl.Len()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, false
		}
		out = append(out, string(s))
	}
	return out, true
}

func (m *Manager) call(trainerID, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	v := m.lookup(trainerID)
	if v == nil {
		m.logger.Info("scripting: no VM for trainer",
			zap.String("trainer", trainerID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if v.cancel != nil {
		v.cancel()
	}
	v.cancel = arm(L, v.limit)

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("trainer", trainerID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases every VM. Later calls behave as if nothing was loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
