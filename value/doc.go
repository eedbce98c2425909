// Package value provides the dynamically typed document model shared by the
// text and pickle codecs.
//
// A Value is one of exactly seven shapes: Null, Bool, Int, Float, String,
// List and Dict. Containers own their children; the model has no shared or
// cyclic references.
//
// # Construction
//
//	doc := value.Dict(
//	    value.M("name", value.String("docval")),
//	    value.M("tags", value.List(value.String("a"), value.String("b"))),
//	    value.M("ratio", value.Float(0.5)),
//	)
//
// # Access
//
// Accessors are type checked and return errors instead of panicking:
//
//	name, err := doc.Key("name")      // *LookupError if missing
//	s, err := name.AsString()         // *TypeError if not a string
//
// Use errors.Is with ErrType, ErrNotFound and ErrParse to classify failures.
//
// # Comparison
//
// Equal and Compare implement deep structural equality and a partial order.
// Int and Float compare by numeric value, so Int(3) equals Float(3.0), while
// Bool(true) never equals Int(1).
package value
