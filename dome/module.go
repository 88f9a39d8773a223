package dome

import (
	"strings"

	"github.com/domekit/domekit/wren"
)

// ModuleBuilder assembles an interpreter module: its source text and the
// native bindings behind the foreign declarations. Building and registering
// from one description keeps the declared surface and the bound surface in
// lockstep.
type ModuleBuilder struct {
	name    string
	classes []*ClassBuilder
	lines   []string
}

// ClassBuilder declares one class inside a module.
type ClassBuilder struct {
	module   *ModuleBuilder
	name     string
	foreign  bool
	allocate wren.ForeignMethod
	members  []member
	lines    []string
}

type memberKind int

const (
	memberMethod memberKind = iota
	memberGetter
	memberSetter
)

type member struct {
	kind   memberKind
	name   string
	static bool
	params []string
	fn     wren.ForeignMethod
}

// NewModule starts a builder for the named module.
func NewModule(name string) *ModuleBuilder {
	return &ModuleBuilder{name: name}
}

// Source appends a verbatim line of module-level source.
func (b *ModuleBuilder) Source(line string) *ModuleBuilder {
	b.lines = append(b.lines, line)
	return b
}

// Class declares a plain class. It can still carry foreign static members.
func (b *ModuleBuilder) Class(name string) *ClassBuilder {
	c := &ClassBuilder{module: b, name: name}
	b.classes = append(b.classes, c)
	return c
}

// ForeignClass declares a foreign class whose instances are backed by a
// native payload. allocate runs on construction and must install the payload
// with wren.SetSlotNewForeign.
func (b *ModuleBuilder) ForeignClass(name string, allocate wren.ForeignMethod) *ClassBuilder {
	c := &ClassBuilder{module: b, name: name, foreign: true, allocate: allocate}
	b.classes = append(b.classes, c)
	return c
}

// Constructor emits a construct declaration with an empty body. Foreign
// classes need one for the allocator to run.
func (c *ClassBuilder) Constructor(name string, params ...string) *ClassBuilder {
	c.lines = append(c.lines, "construct "+name+"("+strings.Join(params, ", ")+") {}")
	return c
}

// Method declares a foreign instance method.
func (c *ClassBuilder) Method(name string, fn wren.ForeignMethod, params ...string) *ClassBuilder {
	c.members = append(c.members, member{kind: memberMethod, name: name, params: params, fn: fn})
	return c
}

// StaticMethod declares a foreign static method.
func (c *ClassBuilder) StaticMethod(name string, fn wren.ForeignMethod, params ...string) *ClassBuilder {
	c.members = append(c.members, member{kind: memberMethod, name: name, static: true, params: params, fn: fn})
	return c
}

// Getter declares a foreign instance getter.
func (c *ClassBuilder) Getter(name string, fn wren.ForeignMethod) *ClassBuilder {
	c.members = append(c.members, member{kind: memberGetter, name: name, fn: fn})
	return c
}

// StaticGetter declares a foreign static getter.
func (c *ClassBuilder) StaticGetter(name string, fn wren.ForeignMethod) *ClassBuilder {
	c.members = append(c.members, member{kind: memberGetter, name: name, static: true, fn: fn})
	return c
}

// Setter declares a foreign instance setter.
func (c *ClassBuilder) Setter(name string, fn wren.ForeignMethod) *ClassBuilder {
	c.members = append(c.members, member{kind: memberSetter, name: name, fn: fn})
	return c
}

// StaticSetter declares a foreign static setter.
func (c *ClassBuilder) StaticSetter(name string, fn wren.ForeignMethod) *ClassBuilder {
	c.members = append(c.members, member{kind: memberSetter, name: name, static: true, fn: fn})
	return c
}

// Source appends a verbatim line inside the class body.
func (c *ClassBuilder) Source(line string) *ClassBuilder {
	c.lines = append(c.lines, line)
	return c
}

// End returns to the module builder.
func (c *ClassBuilder) End() *ModuleBuilder {
	return c.module
}

func arity(n int) string {
	if n == 0 {
		return "()"
	}
	return "(" + strings.Repeat("_,", n-1) + "_)"
}

// signature renders the host's registration key for a member.
func (m member) signature(class string) string {
	var b strings.Builder
	if m.static {
		b.WriteString("static ")
	}
	b.WriteString(class)
	b.WriteByte('.')
	b.WriteString(m.name)
	switch m.kind {
	case memberMethod:
		b.WriteString(arity(len(m.params)))
	case memberSetter:
		b.WriteString("=(_)")
	}
	return b.String()
}

// declaration renders the member's line in the class body.
func (m member) declaration() string {
	var b strings.Builder
	b.WriteString("foreign ")
	if m.static {
		b.WriteString("static ")
	}
	b.WriteString(m.name)
	switch m.kind {
	case memberMethod:
		b.WriteString("(" + strings.Join(m.params, ", ") + ")")
	case memberSetter:
		b.WriteString("=(value)")
	}
	return b.String()
}

// Render returns the exact source text Register submits to the host.
func (b *ModuleBuilder) Render() string {
	var src strings.Builder
	for _, line := range b.lines {
		src.WriteString(line)
		src.WriteByte('\n')
	}
	for _, c := range b.classes {
		if c.foreign {
			src.WriteString("foreign ")
		}
		src.WriteString("class " + c.name + " {\n")
		for _, line := range c.lines {
			src.WriteString("  " + line + "\n")
		}
		for _, m := range c.members {
			src.WriteString("  " + m.declaration() + "\n")
		}
		src.WriteString("}\n")
	}
	return src.String()
}

// Register submits the module to the host: the module source first, then
// each foreign class, then each foreign method under its computed signature,
// and finally the lock. The first rejection stops the sequence and is
// returned; the module is left unlocked in that case.
func (b *ModuleBuilder) Register(ctx Context) error {
	if err := ctx.RegisterModule(b.name, b.Render()); err != nil {
		return err
	}
	for _, c := range b.classes {
		if c.foreign {
			if err := ctx.RegisterClass(b.name, c.name, c.allocate); err != nil {
				return err
			}
		}
		for _, m := range c.members {
			if err := ctx.RegisterFn(b.name, m.signature(c.name), m.fn); err != nil {
				return err
			}
		}
	}
	ctx.LockModule(b.name)
	return nil
}
