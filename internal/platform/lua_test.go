package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func evalLua(t *testing.T, L *lua.LState, code string) lua.LValue {
	t.Helper()

	if err := L.DoString(code); err != nil {
		t.Fatalf("failed to execute %q: %v", code, err)
	}
	got := L.Get(-1)
	L.Pop(1)
	return got
}

func TestInjectPlatformTable_Linux(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:       "linux",
		Arch:     "amd64",
		ArchRaw:  "x86_64",
		Platform: "ubuntu",
		Family:   "debian",
		Version:  "22.04",
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("linux")},
		{"arch", `return platform.arch`, lua.LString("amd64")},
		{"arch_raw", `return platform.arch_raw`, lua.LString("x86_64")},
		{"target", `return platform.target`, lua.LString("x86_64-unknown-linux-gnu")},
		{"is_linux", `return platform.is_linux`, lua.LTrue},
		{"is_macos", `return platform.is_macos`, lua.LFalse},
		{"is_amd64", `return platform.is_amd64`, lua.LTrue},
		{"is_apple_silicon", `return platform.is_apple_silicon`, lua.LFalse},
		{"distro id", `return platform.distro.id`, lua.LString("ubuntu")},
		{"distro family", `return platform.distro.family`, lua.LString("debian")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalLua(t, L, tt.code)
			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("got %v (%v), want %v (%v)", got, got.Type(), tt.want, tt.want.Type())
			}
		})
	}
}

func TestInjectPlatformTable_AppleSilicon(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "darwin", Arch: "arm64", ArchRaw: "arm64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if got := evalLua(t, L, `return platform.target`); got.String() != "aarch64-apple-darwin" {
		t.Errorf("target = %v", got)
	}
	if got := evalLua(t, L, `return platform.is_apple_silicon`); got != lua.LTrue {
		t.Errorf("is_apple_silicon = %v", got)
	}
	if got := evalLua(t, L, `return platform.distro`); got != lua.LNil {
		t.Errorf("distro = %v, want nil", got)
	}
}

func TestInjectPlatformTable_UnsupportedTargetIsNil(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "arm64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if got := evalLua(t, L, `return platform.target`); got != lua.LNil {
		t.Errorf("target = %v, want nil", got)
	}
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"modify os", `platform.os = "windows"`},
		{"add new field", `platform.new_field = "value"`},
		{"modify target", `platform.target = "aarch64-unknown-linux-gnu"`},
		{"replace metatable", `setmetatable(platform, {})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err == nil {
				t.Error("expected error when modifying read-only table, got nil")
			}
		})
	}
}

func TestPlatformTable_WhenHelper(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "darwin", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"when true returns value", `return platform.when(true, "/opt/bin")`, lua.LString("/opt/bin")},
		{"when false returns nil", `return platform.when(false, "/opt/bin")`, lua.LNil},
		{"when with platform check", `return platform.when(platform.is_macos, "mac")`, lua.LString("mac")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalLua(t, L, tt.code)
			if got.Type() != tt.want.Type() || got.String() != tt.want.String() {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
