package config

// DiagnosticPrefix starts every diagnostic line.
const DiagnosticPrefix = ">> "

// Manifest file names searched by the binding generator, in order.
var ManifestFileNames = []string{"dynrt.yaml", "dynrt.yml"}

// DefaultGeneratedFile is the output file name used when the manifest does not name one.
const DefaultGeneratedFile = "dynrt_bindings.go"

// GeneratedHeader marks files written by dynrt-bindgen.
const GeneratedHeader = "// Code generated by dynrt-bindgen. DO NOT EDIT."

// Diagnostic messages
const (
	MsgNoMethod             = "No method found"
	MsgPolymorphicDispatch  = "Polymorphic dispatch not implemented"
	MsgInvocationError      = "Error when invoking:"
	MsgUnknownInvocable     = "Unknown invocable:"
	MsgUnsupportedOperands  = "Unsupported operand types:"
	MsgDivisionByZero       = "Division by zero:"
	MsgProtoConversionError = "Protobuf conversion failed:"
)

// Slot protocol operation names
const (
	ImportOpName     = "_import"
	AccessOpName     = "access"
	GetSlotOpName    = "getSlot"
	SetSlotOpName    = "setSlot"
	RespondsToOpName = "respondsTo"
	RespondOpName    = "respond"
)

// Member names exposed on protobuf message types.
const (
	ProtoNewMember = "new"
)
