// Package loader turns a resolved module location into a parser definition
// bound to a compiled constructor.
//
// A module is a manifest file naming the parser type, the base contract it
// implements and the registered Go constructor that builds instances. The
// base contract manifest must sit next to it. Manifests never carry code:
// whether local or fetched from an object store, they can only bind names to
// constructors compiled into the binary.
package loader
