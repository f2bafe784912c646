package protohost

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/dynrt/internal/value"
)

// ErrConversion is returned when a Go value does not fit a proto field.
var ErrConversion = errors.New("protobuf conversion failed")

// NewMessage builds a message of type md from a field map. Keys are proto
// field names; nil values leave the field at its default.
func NewMessage(md *desc.MessageDescriptor, fields map[string]any) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	if err := SetFields(msg, fields); err != nil {
		return nil, err
	}
	return msg, nil
}

// SetFields assigns every entry of fields to msg.
func SetFields(msg *dynamic.Message, fields map[string]any) error {
	md := msg.GetMessageDescriptor()
	for name, v := range fields {
		fd := md.FindFieldByName(name)
		if fd == nil {
			return fmt.Errorf("%w: %s has no field %q", ErrConversion, md.GetFullyQualifiedName(), name)
		}
		if v == nil {
			continue
		}
		pv, err := toProto(v, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		if err := msg.TrySetField(fd, pv); err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrConversion, name, err)
		}
	}
	return nil
}

// ToMessage accepts either a message of the right type or a field map.
func ToMessage(md *desc.MessageDescriptor, v any) (*dynamic.Message, error) {
	switch x := v.(type) {
	case *dynamic.Message:
		if x.GetMessageDescriptor().GetFullyQualifiedName() != md.GetFullyQualifiedName() {
			return nil, fmt.Errorf("%w: got %s, want %s", ErrConversion,
				x.GetMessageDescriptor().GetFullyQualifiedName(), md.GetFullyQualifiedName())
		}
		return x, nil
	case map[string]any:
		return NewMessage(md, x)
	case nil:
		return dynamic.NewMessage(md), nil
	}
	return nil, fmt.Errorf("%w: cannot build %s from %T", ErrConversion, md.GetFullyQualifiedName(), v)
}

func toProto(v any, fd *desc.FieldDescriptor) (any, error) {
	if fd.IsMap() {
		return nil, fmt.Errorf("%w: map fields are not supported", ErrConversion)
	}
	if !fd.IsRepeated() {
		return toProtoSingle(v, fd)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: expected a slice for repeated field, got %T", ErrConversion, v)
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := toProtoSingle(rv.Index(i).Interface(), fd)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func toProtoSingle(v any, fd *desc.FieldDescriptor) (any, error) {
	kind := value.KindOf(v)
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if kind == value.KindInteger {
			return int32(value.AsInt(v)), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if kind == value.KindInteger {
			return int64(value.AsInt(v)), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if kind == value.KindInteger {
			return uint32(value.AsInt(v)), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if kind == value.KindInteger {
			return uint64(value.AsInt(v)), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if kind.IsNumeric() {
			return value.AsFloat32(v), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if kind.IsNumeric() {
			return value.AsFloat64(v), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if kind == value.KindString {
			return value.String(v), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return []byte(b), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		return ToMessage(fd.GetMessageType(), v)
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if kind == value.KindInteger {
			return int32(value.AsInt(v)), nil
		}
		if kind == value.KindString {
			if ev := fd.GetEnumType().FindValueByName(value.String(v)); ev != nil {
				return ev.GetNumber(), nil
			}
			return nil, fmt.Errorf("%w: %q is not a value of %s", ErrConversion, value.String(v), fd.GetEnumType().GetFullyQualifiedName())
		}
	}
	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrConversion, v, fd.GetType())
}

// FromProto turns a value read from a dynamic message into the runtime's
// representation: integers are boxed, repeated fields become []any, nested
// messages stay messages so their fields resolve by name.
func FromProto(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = FromProto(item)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, item := range x {
			out[value.Box(k)] = FromProto(item)
		}
		return out
	}
	return value.Box(v)
}

// Fields copies every field of msg into a map keyed by proto field name.
func Fields(msg *dynamic.Message) map[string]any {
	out := make(map[string]any)
	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		out[fd.GetName()] = FromProto(msg.GetField(fd))
	}
	return out
}
