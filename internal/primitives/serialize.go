package primitives

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Serialize renders a ModelAction to its textual wire form: a leading
// type-name token followed by semicolon-separated "field=value" pairs,
// tab-separated from the type name. Field order is the lexical order of
// field names, so Serialize is deterministic and Deserialize(Serialize(m))
// round-trips structurally (§8).
//
//	TypeName\tfieldA=1;fieldB=true;fieldC=s:hello
func Serialize(m ModelAction) string {
	fields := m.Fields()
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(m.TypeName())
	b.WriteByte('\t')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(encodeValue(fields[name]))
	}
	return b.String()
}

// Deserialize recovers a ModelAction from its textual encoding by parsing
// the leading type-name token and looking up a constructor in registry.
func Deserialize(s string, registry *ActionRegistry) (ModelAction, error) {
	typeName, rest, _ := strings.Cut(s, "\t")
	if typeName == "" {
		return nil, NewError(BadArgument, "Deserialize", fmt.Errorf("empty type-name token"))
	}
	ctor, ok := registry.lookup(typeName)
	if !ok {
		return nil, NewError(BadArgument, "Deserialize", fmt.Errorf("unregistered model action type %q", typeName))
	}

	fields := make(map[string]Value)
	if rest != "" {
		for _, pair := range strings.Split(rest, ";") {
			if pair == "" {
				continue
			}
			name, raw, found := strings.Cut(pair, "=")
			if !found {
				return nil, NewError(BadArgument, "Deserialize", fmt.Errorf("malformed field %q", pair))
			}
			v, err := decodeValue(raw)
			if err != nil {
				return nil, NewError(BadArgument, "Deserialize", err)
			}
			fields[name] = v
		}
	}

	return ctor(fields)
}

func encodeValue(v Value) string {
	switch v.Kind() {
	case KindBool:
		b, _ := v.Bool()
		return strconv.FormatBool(b)
	case KindInt:
		i, _ := v.Int()
		return strconv.FormatInt(i, 10)
	case KindString:
		s, _ := v.String()
		return "s:" + s
	default:
		return ""
	}
}

// decodeValue inverts encodeValue. Strings carry an "s:" prefix so that a
// string value like "true" or "42" is never mistaken for a bool or int.
func decodeValue(raw string) (Value, error) {
	if strings.HasPrefix(raw, "s:") {
		return StringValue(raw[2:]), nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return BoolValue(b), nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i), nil
	}
	return Value{}, fmt.Errorf("cannot decode value %q", raw)
}
