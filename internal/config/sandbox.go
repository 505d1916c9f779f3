package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM configures a Lua VM to run in a restricted sandbox.
// This disables functions that could:
// - Execute system commands (os.execute, os.exit)
// - Access the filesystem (io.open, io.popen)
// - Load external code (require, dofile, loadfile, load, loadstring)
// - Bypass the read-only platform table (rawset, setmetatable)
//
// string, table and math are preserved so configs can compute values.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os", "io", "debug", "package",
		"require", "dofile", "loadfile", "load", "loadstring", "module",
		"rawset", "rawget", "rawequal", "setmetatable", "getmetatable", "setfenv", "getfenv",
		"collectgarbage", "newproxy",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
// This is the primary way to create a Lua state for config parsing.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize:       maxCallStackSize,
		RegistrySize:        maxRegistrySize,
		IncludeGoStackTrace: false,
	})
	sandboxLuaVM(L)
	return L
}
