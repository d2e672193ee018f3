// Package scripting bridges the ECS runtime into a Lua VM. Scripts define
// components, spawn and edit entities, register systems into scheduler
// phases, and exchange ScriptEvents with Go code through a global `engine`
// module.
package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/kestrelengine/kestrel/internal/core/app"
	"github.com/kestrelengine/kestrel/internal/core/ecs"
	"github.com/kestrelengine/kestrel/internal/core/event"
	"github.com/kestrelengine/kestrel/internal/core/schema"
)

// Engine wraps a single gopher-lua VM bound to one App. Single-goroutine
// access only (the frame loop): Lua systems and event handlers run inside
// App.Step, never concurrently.
type Engine struct {
	vm  *lua.LState
	app *app.App
	log *zap.Logger
}

// NewEngine creates the VM and installs the `engine` module. Scripts are
// loaded separately with LoadDir so hosts control when definitions land.
func NewEngine(a *app.App, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, app: a, log: log}
	e.install()
	return e
}

// LoadDir runs every .lua file directly under dir, in filename order. A
// missing directory is skipped so hosts can ship without scripts.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a script fragment; used by tests and debug consoles.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// Close shuts down the Lua VM. The App must not Step again afterwards if
// scripts registered systems.
func (e *Engine) Close() {
	e.vm.Close()
}

// install publishes the engine module as a global table.
func (e *Engine) install() {
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"define_component": e.luaDefineComponent,
		"define_tag":       e.luaDefineTag,

		"spawn":        e.luaSpawn,
		"despawn":      e.luaDespawn,
		"insert":       e.luaInsert,
		"update":       e.luaUpdate,
		"get":          e.luaGet,
		"has":          e.luaHas,
		"remove":       e.luaRemove,
		"entities":     e.luaEntities,
		"each":         e.luaEach,
		"entity_count": e.luaEntityCount,

		"queue_spawn":   e.luaQueueSpawn,
		"queue_insert":  e.luaQueueInsert,
		"queue_remove":  e.luaQueueRemove,
		"queue_despawn": e.luaQueueDespawn,

		"add_system": e.luaAddSystem,
		"emit":       e.luaEmit,
		"on":         e.luaOn,
		"log":        e.luaLog,
	})
	e.vm.SetGlobal("engine", mod)
}

// --- Registry ---

// engine.define_component(name, defaults?, schema?)
func (e *Engine) luaDefineComponent(L *lua.LState) int {
	name := L.CheckString(1)

	var defaults ecs.Instance
	if tbl, ok := L.Get(2).(*lua.LTable); ok {
		m, ok := tableValue(tbl).(map[string]any)
		if !ok {
			L.RaiseError("define_component %q: defaults must be a map-like table", name)
			return 0
		}
		defaults = m
	}

	var shape schema.Shape
	if tbl, ok := L.Get(3).(*lua.LTable); ok {
		s, err := shapeFromLua(tbl)
		if err != nil {
			L.RaiseError("define_component %q: %s", name, err)
			return 0
		}
		shape = s
	}

	e.app.Registry().Define(name, defaults, shape)
	return 0
}

// engine.define_tag(name)
func (e *Engine) luaDefineTag(L *lua.LState) int {
	e.app.Registry().DefineTag(L.CheckString(1))
	return 0
}

// --- World ---

// engine.spawn(components?) -> entity
// The optional table maps component name to data; a failed insert unwinds
// the half-built entity like the scene loader does.
func (e *Engine) luaSpawn(L *lua.LState) int {
	w := e.app.World()
	ent, err := w.Spawn()
	if err != nil {
		L.RaiseError("spawn: %s", err)
		return 0
	}
	if tbl, ok := L.Get(1).(*lua.LTable); ok {
		bundle, berr := bundleFromLua(tbl)
		if berr != nil {
			_ = w.Despawn(ent)
			L.RaiseError("spawn: %s", berr)
			return 0
		}
		for _, name := range sortedNames(bundle) {
			if err := w.Insert(ent, name, bundle[name]); err != nil {
				_ = w.Despawn(ent)
				L.RaiseError("spawn: %s", err)
				return 0
			}
		}
	}
	L.Push(lua.LNumber(ent))
	return 1
}

// engine.despawn(entity)
func (e *Engine) luaDespawn(L *lua.LState) int {
	if err := e.app.World().Despawn(checkEntity(L, 1)); err != nil {
		L.RaiseError("despawn: %s", err)
	}
	return 0
}

// engine.insert(entity, name, data?)
func (e *Engine) luaInsert(L *lua.LState) int {
	ent := checkEntity(L, 1)
	name := L.CheckString(2)

	var data ecs.Instance
	if tbl, ok := L.Get(3).(*lua.LTable); ok {
		m, ok := tableValue(tbl).(map[string]any)
		if !ok {
			L.RaiseError("insert %q: data must be a map-like table", name)
			return 0
		}
		data = m
	}
	if err := e.app.World().Insert(ent, name, data); err != nil {
		L.RaiseError("insert %q: %s", name, err)
	}
	return 0
}

// engine.update(entity, name, fields)
// Writes fields into the stored instance in place. Data mutation only: the
// structural version does not move, so cached query results stay valid.
func (e *Engine) luaUpdate(L *lua.LState) int {
	ent := checkEntity(L, 1)
	name := L.CheckString(2)
	fields := L.CheckTable(3)

	inst, err := e.app.World().Get(ent, name)
	if err != nil {
		L.RaiseError("update %q: %s", name, err)
		return 0
	}
	fields.ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok {
			inst[string(key)] = luaValue(v)
		}
	})
	return 0
}

// engine.get(entity, name) -> table | nil
// Returns a copy of the stored data, or nil when the entity is dead or the
// component absent. Writes go through engine.update or engine.insert.
func (e *Engine) luaGet(L *lua.LState) int {
	inst, err := e.app.World().Get(checkEntity(L, 1), L.CheckString(2))
	if err != nil {
		var nf *ecs.NotFoundError
		if errors.As(err, &nf) {
			L.Push(lua.LNil)
			return 1
		}
		L.RaiseError("get: %s", err)
		return 0
	}
	L.Push(goValue(L, map[string]any(ecs.CloneInstance(inst))))
	return 1
}

// engine.has(entity, name) -> bool
func (e *Engine) luaHas(L *lua.LState) int {
	ok := e.app.World().Has(checkEntity(L, 1), L.CheckString(2))
	L.Push(lua.LBool(ok))
	return 1
}

// engine.remove(entity, name)
func (e *Engine) luaRemove(L *lua.LState) int {
	if err := e.app.World().Remove(checkEntity(L, 1), L.CheckString(2)); err != nil {
		L.RaiseError("remove: %s", err)
	}
	return 0
}

// engine.entities(name, ...) -> {entity, ...}
// Ad-hoc intersection scan; no guard is held, so structural changes inside
// a loop over the result are allowed.
func (e *Engine) luaEntities(L *lua.LState) int {
	names := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		names = append(names, L.CheckString(i))
	}
	out := e.vm.NewTable()
	for i, ent := range e.app.World().EntitiesWith(names...) {
		out.RawSetInt(i+1, lua.LNumber(ent))
	}
	L.Push(out)
	return 1
}

// engine.each({name, ...}, fn(entity))
// Cached-query iteration under the world's guard: spawn/despawn/remove
// inside fn raise errors, insert and update are fine. Queue structural
// changes with the queue_* functions instead; they flush after the phase.
func (e *Engine) luaEach(L *lua.LState) int {
	namesTbl := L.CheckTable(1)
	fn := L.CheckFunction(2)

	terms := make([]ecs.Term, 0, namesTbl.Len())
	namesTbl.ForEach(func(_, v lua.LValue) {
		terms = append(terms, ecs.Read(lua.LVAsString(v)))
	})

	var callErr error
	ecs.NewQuery(terms...).Bind(e.app.World()).Each(func(ent ecs.Entity, _ []ecs.Instance) bool {
		callErr = L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(ent))
		return callErr == nil
	})
	if callErr != nil {
		L.RaiseError("each: %s", callErr)
	}
	return 0
}

// engine.entity_count() -> n
func (e *Engine) luaEntityCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.app.World().EntityCount()))
	return 1
}

// --- Deferred commands ---

// engine.queue_spawn(components?)
func (e *Engine) luaQueueSpawn(L *lua.LState) int {
	var bundle map[string]ecs.Instance
	if tbl, ok := L.Get(1).(*lua.LTable); ok {
		b, err := bundleFromLua(tbl)
		if err != nil {
			L.RaiseError("queue_spawn: %s", err)
			return 0
		}
		bundle = b
	}
	e.app.Commands().Spawn(bundle)
	return 0
}

// engine.queue_insert(entity, name, data?)
func (e *Engine) luaQueueInsert(L *lua.LState) int {
	var data ecs.Instance
	if tbl, ok := L.Get(3).(*lua.LTable); ok {
		m, ok := tableValue(tbl).(map[string]any)
		if !ok {
			L.RaiseError("queue_insert: data must be a map-like table")
			return 0
		}
		data = m
	}
	e.app.Commands().Insert(checkEntity(L, 1), L.CheckString(2), data)
	return 0
}

// engine.queue_remove(entity, name)
func (e *Engine) luaQueueRemove(L *lua.LState) int {
	e.app.Commands().Remove(checkEntity(L, 1), L.CheckString(2))
	return 0
}

// engine.queue_despawn(entity)
func (e *Engine) luaQueueDespawn(L *lua.LState) int {
	e.app.Commands().Despawn(checkEntity(L, 1))
	return 0
}

// --- Scheduler ---

// engine.add_system(phase, name, fn)
// engine.add_system(phase, name, {run_before={...}, run_after={...}, every=s}, fn)
func (e *Engine) luaAddSystem(L *lua.LState) int {
	phaseName := L.CheckString(1)
	name := L.CheckString(2)

	var opts *lua.LTable
	var fn *lua.LFunction
	switch v := L.Get(3).(type) {
	case *lua.LFunction:
		fn = v
	case *lua.LTable:
		opts = v
		fn = L.CheckFunction(4)
	default:
		L.RaiseError("add_system %q: expected options table or function", name)
		return 0
	}

	phase, err := app.ParsePhase(phaseName)
	if err != nil {
		L.RaiseError("add_system %q: %s", name, err)
		return 0
	}

	sys := app.System{
		Name: name,
		Fn: func(_ *ecs.World, _ *app.Resources, dt float64) {
			if err := e.vm.CallByParam(lua.P{
				Fn:      fn,
				NRet:    0,
				Protect: true,
			}, lua.LNumber(dt)); err != nil {
				e.log.Error("lua system error",
					zap.String("system", name),
					zap.Error(err))
			}
		},
	}
	if opts != nil {
		sys.RunBefore = stringList(opts.RawGetString("run_before"))
		sys.RunAfter = stringList(opts.RawGetString("run_after"))
		if every := lua.LVAsNumber(opts.RawGetString("every")); every > 0 {
			sys.RunIf = app.Every(time.Duration(float64(every) * float64(time.Second)))
		}
	}
	e.app.AddSystem(phase, sys)
	return 0
}

// --- Events ---

// engine.emit(name, payload?)
func (e *Engine) luaEmit(L *lua.LState) int {
	ev := event.ScriptEvent{Name: L.CheckString(1)}
	if tbl, ok := L.Get(2).(*lua.LTable); ok {
		if m, ok := tableValue(tbl).(map[string]any); ok {
			ev.Payload = m
		}
	}
	event.Emit(e.app.Bus(), ev)
	return 0
}

// engine.on(name, fn(payload))
// Handlers run during the next frame's dispatch; a handler error is logged
// and never aborts the frame.
func (e *Engine) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	event.Subscribe(e.app.Bus(), func(ev event.ScriptEvent) {
		if ev.Name != name {
			return
		}
		payload := lua.LValue(lua.LNil)
		if ev.Payload != nil {
			payload = goValue(e.vm, ev.Payload)
		}
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, payload); err != nil {
			e.log.Error("lua event handler error",
				zap.String("event", name),
				zap.Error(err))
		}
	})
	return 0
}

// engine.log(level, msg)
func (e *Engine) luaLog(L *lua.LState) int {
	level := L.CheckString(1)
	msg := L.CheckString(2)
	switch level {
	case "debug":
		e.log.Debug(msg)
	case "warn":
		e.log.Warn(msg)
	case "error":
		e.log.Error(msg)
	default:
		e.log.Info(msg)
	}
	return 0
}

// --- Conversions ---

func checkEntity(L *lua.LState, n int) ecs.Entity {
	return ecs.Entity(uint64(L.CheckNumber(n)))
}

// luaValue maps a Lua value into the component data model.
func luaValue(v lua.LValue) any {
	switch t := v.(type) {
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	case *lua.LTable:
		return tableValue(t)
	}
	return nil
}

// tableValue maps a Lua table to []any when it is a pure 1..n array,
// otherwise to map[string]any keyed by its string keys.
func tableValue(t *lua.LTable) any {
	if n := t.MaxN(); n > 0 {
		arr := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			arr = append(arr, luaValue(t.RawGetInt(i)))
		}
		return arr
	}
	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		if key, ok := k.(lua.LString); ok {
			m[string(key)] = luaValue(v)
		}
	})
	return m
}

// goValue maps component data back into Lua tables and scalars.
func goValue(L *lua.LState, v any) lua.LValue {
	switch t := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(t)
	case float64:
		return lua.LNumber(t)
	case float32:
		return lua.LNumber(t)
	case int:
		return lua.LNumber(t)
	case int64:
		return lua.LNumber(t)
	case ecs.Entity:
		return lua.LNumber(t)
	case string:
		return lua.LString(t)
	case []any:
		tbl := L.NewTable()
		for i, el := range t {
			tbl.RawSetInt(i+1, goValue(L, el))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, el := range t {
			tbl.RawSetString(k, goValue(L, el))
		}
		return tbl
	}
	return lua.LString(fmt.Sprintf("%v", v))
}

// shapeFromLua reads a schema table: each field is either a kind name or
// {kind="object", fields={...}} for nested shapes.
func shapeFromLua(t *lua.LTable) (schema.Shape, error) {
	shape := make(schema.Shape)
	var ferr error
	t.ForEach(func(k, v lua.LValue) {
		if ferr != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			ferr = fmt.Errorf("schema keys must be strings")
			return
		}
		switch spec := v.(type) {
		case lua.LString:
			kind, err := schema.ParseKind(string(spec))
			if err != nil {
				ferr = fmt.Errorf("field %q: %w", name, err)
				return
			}
			shape[string(name)] = schema.FieldSpec{Kind: kind}
		case *lua.LTable:
			kind, err := schema.ParseKind(lua.LVAsString(spec.RawGetString("kind")))
			if err != nil {
				ferr = fmt.Errorf("field %q: %w", name, err)
				return
			}
			fs := schema.FieldSpec{Kind: kind}
			if nested, ok := spec.RawGetString("fields").(*lua.LTable); ok {
				ns, err := shapeFromLua(nested)
				if err != nil {
					ferr = fmt.Errorf("field %q: %w", name, err)
					return
				}
				fs.Shape = ns
			}
			shape[string(name)] = fs
		default:
			ferr = fmt.Errorf("field %q: spec must be a kind name or a table", name)
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	return shape, nil
}

// bundleFromLua reads a {component_name = data_table} bundle.
func bundleFromLua(t *lua.LTable) (map[string]ecs.Instance, error) {
	bundle := make(map[string]ecs.Instance)
	var ferr error
	t.ForEach(func(k, v lua.LValue) {
		if ferr != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			ferr = fmt.Errorf("component names must be strings")
			return
		}
		switch data := v.(type) {
		case *lua.LTable:
			m, ok := tableValue(data).(map[string]any)
			if !ok {
				ferr = fmt.Errorf("component %q: data must be a map-like table", name)
				return
			}
			bundle[string(name)] = m
		case lua.LBool:
			// `marker = true` attaches a tag with no data.
			bundle[string(name)] = nil
		default:
			ferr = fmt.Errorf("component %q: data must be a table or true", name)
		}
	})
	if ferr != nil {
		return nil, ferr
	}
	return bundle, nil
}

func stringList(v lua.LValue) []string {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	t.ForEach(func(_, el lua.LValue) {
		if s, ok := el.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func sortedNames(bundle map[string]ecs.Instance) []string {
	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
