// Package model defines the declarative form description everything else in
// go-formdef derives from. A Form owns an ordered tree of content items: bare
// Fields, Groups (sections) and Steps (wizard pages). Fields are immutable
// value objects built through NewField and functional options; every
// constructor validates internal consistency (bound ordering, option sets,
// default value shape) and fails with a *ConstructionError naming the
// offending attribute. NewForm additionally checks that field names are unique
// across the whole tree and that visibility rules and dependent option sets
// only reference fields that exist, reporting dangling references as a
// *ConfigurationError.
//
// Consumers work with the flattened field sequence (Form.Fields), which is
// the depth-first, left-to-right traversal of the content tree. Container
// identity never leaks into validation or schema output, only field names do.
package model
