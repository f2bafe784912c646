package dynrt

// Package-level entry points used by generated code. Each forwards to Default().

func Register(ti *TypeInfo) { Default().Register(ti) }

func Resolve(target any, name string) any { return Default().Resolve(target, name) }

func LookupMember(target any, name string) Lookup { return Default().Lookup(target, name) }

func Invoke(callable any, args ...any) any { return Default().Invoke(callable, args...) }

func Call(callable any, args ...any) Result { return Default().Call(callable, args...) }

func Add(a, b any) any { return Default().Add(a, b) }

func Subtract(a, b any) any { return Default().Subtract(a, b) }

func Multiply(a, b any) any { return Default().Multiply(a, b) }

func Divide(a, b any) any { return Default().Divide(a, b) }

func Print(items ...any) { Default().Print(items...) }

func Box(v any) any { return Default().Box(v) }

func Import(context any, name string) SlotResult { return Default().Import(context, name) }

func Access(v any) SlotResult { return Default().Access(v) }

func GetSlot(target any, name string) SlotResult { return Default().GetSlot(target, name) }

func SetSlot(target any, name string) SlotResult { return Default().SetSlot(target, name) }

func RespondsTo(target any, name string) SlotResult { return Default().RespondsTo(target, name) }

func Respond(target any, name string, args ...any) SlotResult {
	return Default().Respond(target, name, args...)
}
