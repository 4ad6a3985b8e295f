// Package prompt renders fixed instruction templates.
//
// Templates use text/template syntax with missingkey=error, so a typo in a
// field name fails at render time instead of producing "<no value>". Values
// interpolated into a template are plain data: template syntax inside a value
// is written out literally and never executed.
package prompt
