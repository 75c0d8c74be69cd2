// Package launch turns a compiled profile into something runnable: an
// exec-ready invocation, a copy/paste shell command, or a desktop entry
// body. All three flavors render from the same compiled value.
package launch

import (
	"strings"

	"codeberg.org/mutker/gamectl/internal/profile"
)

// Invocation is a ready-to-exec command: full argv with the wrapper
// chain prepended, and the complete child environment.
type Invocation struct {
	Argv []string
	Env  []string
}

// Compose merges the compiled environment over the ambient one and
// prepends the wrapper chain to the target command. Profile variables
// overwrite ambient values of the same name; ambient variables the
// profile does not touch pass through untouched.
func Compose(c profile.Compiled, target []string, ambient []string) Invocation {
	env := make([]string, 0, len(ambient)+len(c.Env))
	for _, kv := range ambient {
		name, _, ok := strings.Cut(kv, "=")
		if ok {
			if _, overridden := c.Env[name]; overridden {
				continue
			}
		}
		env = append(env, kv)
	}
	env = append(env, c.Env.Sorted()...)

	argv := append(c.Wrappers.Flatten(), target...)

	return Invocation{Argv: argv, Env: env}
}

// RenderInline renders a self-contained shell command: env assignments,
// wrapper chain, then the target. Deterministic for a given compiled
// value, so regenerating a desktop entry never churns its Exec line.
func RenderInline(c profile.Compiled, target []string) string {
	var parts []string

	if len(c.Env) > 0 {
		parts = append(parts, "env")
		for _, kv := range c.Env.Sorted() {
			parts = append(parts, quoteAssignment(kv))
		}
	}
	for _, arg := range c.Wrappers.Flatten() {
		parts = append(parts, quote(arg))
	}
	for _, arg := range target {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

// RenderDelegate renders a command that defers compilation to launch
// time, so later profile edits take effect without regenerating the
// command.
func RenderDelegate(profileName string, target []string) string {
	parts := []string{"gamectl", "launch", "--profile", quote(profileName), "--"}
	for _, arg := range target {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

// quote shell-quotes a single argument. Plain words pass through bare.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`&|;<>()*?[]#~") {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteAssignment quotes only the value half of NAME=VALUE, keeping the
// variable name readable.
func quoteAssignment(kv string) string {
	name, value, ok := strings.Cut(kv, "=")
	if !ok {
		return quote(kv)
	}

	return name + "=" + quote(value)
}
