// Package hcl_adapter implements the config interfaces for HCL: it loads job
// definitions written as `transformation` blocks and decodes parser module
// manifests (`parser` and `contract` blocks).
package hcl_adapter
