// Package model provides data models for the poller.
package model

import "jmxstat/internal/mbean"

// AttributeReference identifies one value to sample: an attribute of a
// remote object, optionally drilled into one field of a composite value.
type AttributeReference struct {
	Object    mbean.ObjectName // Object holding the attribute
	Attribute string           // Attribute name
	SubField  string           // Composite field name, empty when absent
}

// HasSubField reports whether the reference drills into a composite value.
func (r AttributeReference) HasSubField() bool {
	return r.SubField != ""
}

// Label returns the column header for the reference: attribute[.subfield].
func (r AttributeReference) Label() string {
	if r.HasSubField() {
		return r.Attribute + "." + r.SubField
	}
	return r.Attribute
}

// String returns the reference in the command-line form object[attribute[.subfield]].
func (r AttributeReference) String() string {
	return r.Object.String() + "[" + r.Label() + "]"
}
