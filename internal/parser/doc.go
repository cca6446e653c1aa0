// Package parser defines the capability contract every parser implementation
// must satisfy, together with the open-ended options bag passed through the
// engine to each parser.
//
// A parser is constructed per transformation from an origin, a destiny and
// its options. It always exposes the default operation (Process) and declares
// any additional named operations through AvailableOperations. Named
// operations are looked up through the optional OperationProvider interface.
package parser
