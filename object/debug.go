// Copyright 2024 The Authors
// This file is part of objectdb.

package object

import (
	"fmt"
	"strings"
)

// DebugString renders an object as a "name=value" dump for logs and
// test failure messages.
func DebugString(layout *Layout, data []byte) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range layout.Properties {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", p.Name, debugValue(p, data))
	}
	b.WriteByte('}')
	return b.String()
}

func debugValue(p Property, data []byte) string {
	switch p.Type {
	case Bool:
		v, ok := ReadBool(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%v", v)
	case Int:
		v, ok := ReadInt(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%d", v)
	case Long:
		v, ok := ReadLong(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%d", v)
	case Float:
		v, ok := ReadFloat(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%g", v)
	case Double:
		v, ok := ReadDouble(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%g", v)
	case String:
		v, ok := ReadString(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%q", v)
	case Bytes:
		v, ok := ReadBytes(p, data)
		if !ok {
			return "null"
		}
		return fmt.Sprintf("%x", v)
	default:
		if IsNull(p, data) {
			return "null"
		}
		return "[...]"
	}
}
